package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"control_panel/internal/feedback"
	"control_panel/internal/keypad"
	"control_panel/internal/panel"

	"github.com/spf13/cobra"
)

var (
	keypadSubject    string
	keypadSerial     string
	keypadBaud       int
	keypadCodeLength int
	keypadConsole    bool
)

func keypadCommand() *cobra.Command {
	cmd := cobra.Command{
		Use:   "keypad",
		Short: "Drive a local panel from stdin or a serial keypad",
		Long: "Keys: 0-9 digits, * cancel, ! or P panic, # submit.\n" +
			"With --service-console, U releases a locked panel.\n" +
			"Feedback is written to the log.",
		Args: cobra.ExactArgs(0),
		RunE: runKeypad,
	}
	cmd.Flags().StringVar(&keypadSubject, "subject", "", "subject id the panel acts for")
	cmd.Flags().StringVar(&keypadSerial, "serial", "", "serial device of the keypad (default stdin)")
	cmd.Flags().IntVar(&keypadBaud, "baud", 0, "serial baud rate (default from config)")
	cmd.Flags().IntVar(&keypadCodeLength, "code-length", -1, "auto-submit length, 0 disables (default from config)")
	cmd.Flags().BoolVar(&keypadConsole, "service-console", false, "accept U as the lockout release key")
	_ = cmd.MarkFlagRequired("subject")

	return &cmd
}

func runKeypad(cmd *cobra.Command, _ []string) error {
	cfg, lg, client, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx, stop := listenStop()
	defer stop()

	var in io.Reader = os.Stdin
	port, baud := keypadSerial, keypadBaud
	if port == "" {
		port = cfg.Keypad.SerialPort
	}
	if baud <= 0 {
		baud = cfg.Keypad.Baud
	}
	if port != "" {
		rc, err := keypad.OpenSerial(port, baud)
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()
		// Closing the port unblocks the reader on shutdown.
		go func() {
			<-ctx.Done()
			_ = rc.Close()
		}()
		in = rc
	}

	codeLength := keypadCodeLength
	if codeLength < 0 {
		codeLength = cfg.Panel.CodeLength
	}

	hub := feedback.NewHub(lg, feedback.NewLogPublisher(lg))
	defer hub.Close()
	ctrl := panel.New(panel.Config{SubjectID: keypadSubject, CodeLength: codeLength},
		client, hub.Sink("local"), lg)

	var opts []keypad.Option
	if keypadConsole {
		opts = append(opts, keypad.WithUnlock())
	}

	lg.Infow("keypad session started", "subject_id", keypadSubject, "serial", port, "service_console", keypadConsole)
	err = keypad.Pump(ctx, keypad.NewReader(in, opts...), ctrl)
	lg.Infow("keypad session ended", "state", ctrl.State().String())
	if err != nil && !errors.Is(err, ctx.Err()) {
		return fmt.Errorf("keypad: %w", err)
	}
	return nil
}
