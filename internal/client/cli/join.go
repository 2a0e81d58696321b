package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/iudanet/studyroom/internal/validation"
)

func (c *Cli) runJoin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("join", flag.ContinueOnError)
	name := fs.String("name", "", "Display name")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: usage: studyroom join CODE [--name NAME]", ErrUsage)
	}

	// Код проверяется до запроса имени
	code, err := validation.ValidateRoomCode(positional[0])
	if err != nil {
		c.io.Println(describeError(err, ""))
		return err
	}

	username, err := c.resolveName(ctx, *name)
	if err != nil {
		return err
	}

	code, err = c.apiClient.JoinRoom(ctx, username, code)
	if err != nil {
		c.io.Println(describeError(err, "Failed to join room. Please try again."))
		return err
	}

	if err := c.bootstrap.Remember(ctx, username, code); err != nil {
		return err
	}

	c.io.Printf("✓ Room %s found. Welcome, %s!\n", code, username)
	c.io.Printf("Enter the room with: studyroom room %s\n", code)
	return nil
}
