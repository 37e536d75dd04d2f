package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smartexpense/smartexpense/internal/api"
	"github.com/smartexpense/smartexpense/internal/cli"
	"github.com/smartexpense/smartexpense/internal/model"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagEmail      string
	flagPassword   string
	flagUsername   string
	flagPhone      string
	flagRepassword string
	flagBio        string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE:  runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the session user and earning snapshot",
	RunE:  runLogout,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the signed-in user's profile",
	RunE:  runProfile,
}

func init() {
	loginCmd.Flags().StringVar(&flagEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&flagPassword, "password", "", "Account password (prompted when omitted)")

	signupCmd.Flags().StringVar(&flagEmail, "email", "", "Email address")
	signupCmd.Flags().StringVar(&flagUsername, "username", "", "Letters, digits and underscore")
	signupCmd.Flags().StringVar(&flagPhone, "phone", "", "10-digit phone number")
	signupCmd.Flags().StringVar(&flagPassword, "password", "", "At least 4 digits")
	signupCmd.Flags().StringVar(&flagRepassword, "repassword", "", "Password confirmation")
	signupCmd.Flags().StringVar(&flagBio, "bio", "", "Short bio (optional)")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, profileCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	creds := model.Credentials{Email: strings.TrimSpace(flagEmail), Password: flagPassword}
	if creds.Email == "" || creds.Password == "" {
		if err := promptLogin(&creds); err != nil {
			return err
		}
	}

	u, err := e.client.Login(cmd.Context(), creds)
	if err != nil {
		return err
	}
	if err := e.session.Login(u); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	// The earning snapshot backs the same-month import policy.
	if earning, err := e.client.LatestEarning(cmd.Context(), u.ID); err == nil {
		if err := e.session.SetEarning(earning); err != nil {
			e.log.Warn("saving earning snapshot", zap.Error(err))
		}
	}

	fmt.Println("  " + cli.RenderOK("Logged in as "+u.Username))
	return nil
}

func promptLogin(creds *model.Credentials) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(&creds.Email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&creds.Password),
		),
	).Run()
}

func runSignup(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	s := model.Signup{
		Email:    strings.TrimSpace(flagEmail),
		Username: strings.TrimSpace(flagUsername),
		Phone:    strings.TrimSpace(flagPhone),
		Password: flagPassword,
		Bio:      flagBio,
	}
	repassword := flagRepassword
	if s.Email == "" || s.Username == "" || s.Phone == "" || s.Password == "" || repassword == "" {
		if err := promptSignup(&s, &repassword); err != nil {
			return err
		}
	}

	if err := s.Validate(repassword); err != nil {
		return err
	}

	u, err := e.client.Signup(cmd.Context(), s)
	if err != nil {
		return err
	}
	if err := e.session.Login(u); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	fmt.Println("  " + cli.RenderOK("Account created, logged in as "+u.Username))
	fmt.Println("  Record this month's earning with `smartexpense earning add`.")
	return nil
}

func promptSignup(s *model.Signup, repassword *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(&s.Email),
			huh.NewInput().Title("Username").Value(&s.Username),
			huh.NewInput().Title("Phone").Value(&s.Phone),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&s.Password),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(repassword),
			huh.NewText().Title("Bio").Value(&s.Bio),
		),
	).Run()
}

func runLogout(_ *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if _, ok := e.session.User(); !ok {
		fmt.Println("  Not logged in.")
		return nil
	}
	if err := e.session.Logout(); err != nil {
		return err
	}
	fmt.Println("  " + cli.RenderOK("Logged out"))
	return nil
}

func runProfile(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	u, err := e.requireUser()
	if err != nil {
		return err
	}

	profile, err := e.client.Profile(cmd.Context(), u.ID)
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return err
	}
	if err != nil {
		// Offline: the stored session copy is still worth showing.
		progress("Showing stored profile: %s", api.UserMessage(err))
		profile = u
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROFILE"))
	fmt.Println()
	pairs := [][2]string{
		{"Username", profile.Username},
		{"Email", profile.Email},
		{"Phone", orNotSet(profile.Phone)},
		{"Bio", orNotSet(profile.Bio)},
	}
	if earning, ok := e.session.Earning(); ok {
		pairs = append(pairs,
			[2]string{"Latest earning", cli.FormatAmount(earning.Amount)},
			[2]string{"Earning date", earning.EarningDate},
		)
	}
	fmt.Print(cli.RenderKV(pairs))
	fmt.Println()
	return nil
}

func orNotSet(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not set)"
	}
	return s
}
