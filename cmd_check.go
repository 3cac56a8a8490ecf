package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"go_photodna/core"
	"go_photodna/core/validation"
)

func versionCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "print build and native library versions",
		Action: env.version,
	}
}

func (e *cliEnv) version(c *cli.Context) error {
	fmt.Fprintf(e.out, "photodna %s\n", core.GetVersionInfo())

	gen, err := e.generator(nil)
	if err != nil {
		fmt.Fprintf(e.out, "library: %s\n", color.YellowString("unavailable (%v)", err))
		return nil
	}
	text, ok := gen.LibraryVersionText()
	if !ok {
		text = "version text unavailable"
	}
	fmt.Fprintf(e.out, "library: %s (%d.%d.%d)\n", text,
		gen.LibraryVersionMajor(), gen.LibraryVersionMinor(), gen.LibraryVersionPatch())
	return nil
}

func checkCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "validate configuration and try loading the native library",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "fail-fast", Usage: "stop at the first failed check"},
			&cli.BoolFlag{Name: "no-load", Usage: "skip loading the library"},
		},
		Action: env.check,
	}
}

func (e *cliEnv) check(c *cli.Context) error {
	suite := validation.NewValidationSuite(e.cfg).
		WithOutput(e.out).
		WithFailFast(c.Bool("fail-fast"))
	if !c.Bool("no-load") {
		suite = suite.WithLibraryLoader(e.loadLibrary)
	}

	result := suite.Validate()
	if !result.Success {
		for _, step := range result.Steps {
			if step.Status == validation.StepFailed {
				e.logger.Error("Validation step failed",
					zap.String("step", step.Name),
					zap.String("message", step.Message),
					zap.Error(step.Error),
				)
			}
		}
		return cli.Exit("", core.ExitCodeError)
	}

	e.logger.Info("Configuration validation passed",
		zap.Int("checks_passed", result.PassedSteps),
		zap.Int("warnings", result.Warnings),
		zap.Duration("duration", result.Duration),
	)
	return nil
}

// loadLibrary opens the library at path, reads its version text and closes it again.
func (e *cliEnv) loadLibrary(path string) (string, error) {
	cfg := *e.cfg
	cfg.LibraryPath = path

	gen, err := e.openGenerator(&cfg, nil)
	if err != nil {
		return "", err
	}
	defer gen.Close()

	if text, ok := gen.LibraryVersionText(); ok {
		return text, nil
	}
	return fmt.Sprintf("%d.%d.%d", gen.LibraryVersionMajor(), gen.LibraryVersionMinor(), gen.LibraryVersionPatch()), nil
}
