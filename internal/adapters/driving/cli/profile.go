package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

var (
	profileJSON    bool
	profileHistory int
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect registered users",
}

var profileShowCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Show a user's registration profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

func init() {
	profileShowCmd.Flags().BoolVar(&profileJSON, "json", false, "output as JSON")
	profileShowCmd.Flags().IntVar(&profileHistory, "history", 0, "also show the last N logged messages")
	profileCmd.AddCommand(profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}

// profileOutput is the --json shape.
type profileOutput struct {
	UserID     int64     `json:"user_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Phone      string    `json:"phone"`
	Specialty  string    `json:"specialty"`
	Experience string    `json:"experience"`
	Username   string    `json:"username,omitempty"`
	RefSource  string    `json:"ref_source,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`

	History []historyEntry `json:"history,omitempty"`
}

// historyEntry is one logged message in --json output.
type historyEntry struct {
	Time    time.Time `json:"time"`
	Role    string    `json:"role"`
	Type    string    `json:"type"`
	Content string    `json:"content"`
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", args[0], domain.ErrInvalidInput)
	}

	rt, err := runtimeApp()
	if err != nil {
		return err
	}
	profiles, err := rt.Profiles(cmd.Context())
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}

	p, err := profiles.Get(cmd.Context(), userID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("user %d is not registered", userID)
	}
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}

	if profileHistory < 0 {
		return fmt.Errorf("--history must not be negative: %w", domain.ErrInvalidInput)
	}
	var history []domain.ChatEntry
	if profileHistory > 0 {
		history, err = profiles.History(cmd.Context(), userID, profileHistory)
		if err != nil {
			return fmt.Errorf("failed to read chat history: %w", err)
		}
	}

	if profileJSON {
		out := profileOutput{
			UserID:     p.UserID,
			FirstName:  p.FirstName,
			LastName:   p.LastName,
			Phone:      p.Phone,
			Specialty:  p.Specialty,
			Experience: string(p.Experience),
			Username:   p.Username,
			RefSource:  p.RefSource,
			UpdatedAt:  p.UpdatedAt,
		}
		for _, e := range history {
			out.History = append(out.History, historyEntry{
				Time:    e.Time,
				Role:    string(e.Role),
				Type:    string(e.Type),
				Content: e.Content,
			})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal profile: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("User ID:    %d\n", p.UserID)
	cmd.Printf("Name:       %s %s\n", p.FirstName, p.LastName)
	cmd.Printf("Phone:      %s\n", p.Phone)
	cmd.Printf("Specialty:  %s\n", p.Specialty)
	cmd.Printf("Experience: %s\n", p.Experience.Label())
	if p.Username != "" {
		cmd.Printf("Username:   @%s\n", p.Username)
	}
	if p.RefSource != "" {
		cmd.Printf("Referral:   %s\n", p.RefSource)
	}
	cmd.Printf("Updated:    %s\n", p.UpdatedAt.Format(time.RFC3339))

	if profileHistory > 0 {
		cmd.Println()
		if len(history) == 0 {
			cmd.Println("No logged messages.")
		}
		for _, e := range history {
			cmd.Printf("[%s] %-8s %s\n", e.Time.Format(time.RFC3339), e.Role, e.Content)
		}
	}
	return nil
}
