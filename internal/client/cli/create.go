package cli

import (
	"context"
	"flag"
	"fmt"
)

func (c *Cli) runCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	name := fs.String("name", "", "Display name")
	if _, err := parseInterspersed(fs, args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	username, err := c.resolveName(ctx, *name)
	if err != nil {
		return err
	}

	code, err := c.apiClient.CreateRoom(ctx, username)
	if err != nil {
		c.io.Println(describeError(err, "Failed to create room. Please try again."))
		return err
	}

	if err := c.bootstrap.Remember(ctx, username, code); err != nil {
		return err
	}

	c.logger.Info("Room created", "room_code", code, "username", username)
	c.io.Println("✓ Room created successfully!")
	c.io.Printf("Room code: %s\n", code)
	c.io.Println("Share this code with your friends.")
	c.io.Printf("Enter the room with: studyroom room %s\n", code)
	return nil
}
