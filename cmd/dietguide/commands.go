package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dietguide_backend/internal/feature/dietplan/domain/entity"
	"dietguide_backend/internal/feature/dietplan/transport/render"
	planusecase "dietguide_backend/internal/feature/dietplan/usecase"
	sessionusecase "dietguide_backend/internal/feature/session/usecase"
)

// newRootCmd はサブコマンドを登録したルートコマンドを生成します。
// 返される関数は構築済みの依存関係（ストア接続）を閉じます。コマンドの成否に関わらず呼び出すこと。
func newRootCmd(load appLoader) (*cobra.Command, func() error) {
	var a *app

	root := &cobra.Command{
		Use:           "dietguide",
		Short:         "AI-powered personalized diet plans",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["noApp"] == "true" {
				return nil
			}
			loaded, err := load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a = loaded
			return nil
		},
	}
	closeApp := func() error {
		if a == nil || a.close == nil {
			return nil
		}
		return a.close()
	}

	getApp := func() *app { return a }
	root.AddCommand(
		newRegisterCmd(getApp),
		newLoginCmd(getApp),
		newLogoutCmd(getApp),
		newWhoamiCmd(getApp),
		newGoalsCmd(),
		newPlanCmd(getApp),
	)
	return root, closeApp
}

func newRegisterCmd(getApp func() *app) *cobra.Command {
	var name, email, password, confirm string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if confirm != "" && confirm != password {
				return errors.New("passwords do not match")
			}
			s, err := getApp().session.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s!\n", s.User.DisplayName())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (optional)")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (at least 6 characters)")
	cmd.Flags().StringVar(&confirm, "confirm-password", "", "repeat the password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd(getApp func() *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := getApp().session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s!\n", s.User.DisplayName())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := getApp().session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := getApp().session.CurrentUser()
			if u == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", u.DisplayName(), u.Email)
			return nil
		},
	}
}

func newGoalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "goals",
		Short:       "List the wellness goals",
		Annotations: map[string]string{"noApp": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, g := range entity.WellnessGoals {
				line := fmt.Sprintf("%-18s %s", g.Slug(), g)
				if g.RequiresCondition() {
					line += " (requires --condition)"
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func newPlanCmd(getApp func() *app) *cobra.Command {
	var goalArg, condition string
	var raw bool
	var width int
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a diet plan for a wellness goal",
		Example: `  dietguide plan --goal build-muscle
  dietguide plan --goal manage-condition --condition "Type 2 diabetes"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			goal, err := entity.ParseWellnessGoal(goalArg)
			if err != nil {
				return err
			}
			a := getApp()
			plan, err := a.plans.RequestPlan(cmd.Context(), a.session.CurrentUser(), goal, condition)
			if err != nil {
				return err
			}
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), render.Markdown(plan))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Terminal(plan, width))
			return nil
		},
	}
	cmd.Flags().StringVar(&goalArg, "goal", "", "wellness goal (see `dietguide goals`)")
	cmd.Flags().StringVar(&condition, "condition", "", "health condition details for manage-condition")
	cmd.Flags().BoolVar(&raw, "raw", false, "print Markdown without terminal styling")
	cmd.Flags().IntVar(&width, "width", 80, "word wrap width")
	return cmd
}

// userMessage はエラー分類に属するエラーのユーザー向けメッセージを返します。
// 分類外のエラーはそのまま表示します。
func userMessage(err error) string {
	for _, known := range []error{
		sessionusecase.ErrInvalidCredentials,
		sessionusecase.ErrEmailAlreadyExists,
		sessionusecase.ErrWeakPassword,
		sessionusecase.ErrPasswordTooLong,
		planusecase.ErrNotAuthenticated,
		planusecase.ErrNoGoalSelected,
		planusecase.ErrMissingConditionDetails,
		planusecase.ErrRequestInFlight,
		planusecase.ErrMissingAPIKey,
		planusecase.ErrInvalidAPIKey,
		planusecase.ErrUpstreamRequestFailed,
		planusecase.ErrInvalidResponseFormat,
		planusecase.ErrIncompleteResponse,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return strings.TrimSpace(err.Error())
}
