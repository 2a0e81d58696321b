package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/studyroom/internal/client/api"
	"github.com/iudanet/studyroom/internal/validation"
)

func (c *Cli) runUpload(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: usage: studyroom upload CODE PATH", ErrUsage)
	}

	code, err := validation.ValidateRoomCode(args[0])
	if err != nil {
		c.io.Println(describeError(err, ""))
		return err
	}

	username, err := c.bootstrap.Resolve(ctx)
	if err != nil {
		return err
	}

	return c.uploadFile(ctx, code, username, args[1])
}

// uploadFile загружает PDF. Документ откроется у всех после события pdf_uploaded.
func (c *Cli) uploadFile(ctx context.Context, code, username, path string) error {
	file, closer, err := api.OpenUpload(path)
	if err != nil {
		c.io.Printf("Cannot open %s: %v\n", path, err)
		return err
	}
	defer closer.Close()

	if err := validation.ValidateUpload(file.MimeType, file.Size); err != nil {
		c.io.Println(describeError(err, ""))
		return err
	}

	c.io.Println("Uploading PDF...")
	doc, err := c.apiClient.UploadPDF(ctx, code, username, file)
	if err != nil {
		msg := describeError(err, "Upload failed. Please try again.")
		if msg == "" {
			msg = "Upload failed"
		}
		c.io.Println(msg)
		return err
	}

	c.logger.Info("PDF uploaded", "room_code", code, "pdf_id", doc.ID, "size", file.Size)
	c.io.Println("PDF uploaded successfully!")
	return nil
}
