package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Tesseract shells out to the tesseract binary. The subprocess inherits
// the call's deadline so a hung recognition cannot stall intake.
type Tesseract struct {
	binary  string
	timeout time.Duration
}

func NewTesseract(binary string, timeout time.Duration) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Tesseract{binary: binary, timeout: timeout}
}

func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.binary, imagePath, "stdout")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, stderr.String())
	}

	return stdout.String(), nil
}
