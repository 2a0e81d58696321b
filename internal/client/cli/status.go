package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/studyroom/internal/client/storage"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Session Status ===")
	c.io.Println()

	sess, err := c.bootstrap.Current(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			c.io.Println("Status: No active session")
			c.io.Println()
			c.io.Println("Run 'studyroom create' or 'studyroom join CODE' to start.")
			return nil
		}
		return fmt.Errorf("failed to get session: %w", err)
	}

	expiresAt := time.Unix(sess.ExpiresAt, 0)

	c.io.Println("Status: Active session")
	c.io.Printf("Name: %s\n", sess.Username)
	if sess.RoomCode != "" {
		c.io.Printf("Last room: %s\n", sess.RoomCode)
	}
	c.io.Printf("Session expires: %s\n", expiresAt.Format(time.RFC3339))
	if remaining := time.Until(expiresAt); remaining > 0 {
		c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))
	}
	return nil
}

func (c *Cli) runLeave(ctx context.Context) error {
	if err := c.bootstrap.Forget(ctx); err != nil {
		return err
	}
	c.io.Println("✓ Session cleared")
	return nil
}
