package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"go_photodna/core"
	"go_photodna/db"
	"go_photodna/photodna"
	"go_photodna/photodnaruntime"
)

// recordOutput is the --json form of a stored record.
type recordOutput struct {
	ID             string      `json:"id"`
	BatchID        string      `json:"batch_id,omitempty"`
	SourcePath     string      `json:"source_path"`
	Digest         string      `json:"digest"`
	Width          int         `json:"width"`
	Height         int         `json:"height"`
	PixelFormat    string      `json:"pixel_format"`
	Hash           string      `json:"hash"`
	BorderlessHash string      `json:"borderless_hash,omitempty"`
	Region         *regionJSON `json:"region,omitempty"`
	CreatedAt      string      `json:"created_at"`
}

func newRecordOutput(rec *db.HashRecord) recordOutput {
	out := recordOutput{
		ID:          rec.ID.String(),
		BatchID:     rec.BatchID,
		SourcePath:  rec.SourcePath,
		Digest:      rec.Digest,
		Width:       rec.Width,
		Height:      rec.Height,
		PixelFormat: rec.PixelFormat,
		Hash:        rec.Hash.Hex(),
		CreatedAt:   rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if rec.BorderlessHash != nil {
		out.BorderlessHash = rec.BorderlessHash.Hex()
	}
	if r := rec.Region; r != nil {
		out.Region = &regionJSON{X: r.X, Y: r.Y, W: r.W, H: r.H}
	}
	return out
}

func lookupCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "lookup",
		Usage: "find stored records by hash, content digest or file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "hash", Usage: "hex hash, matched against primary and borderless hashes"},
			&cli.StringFlag{Name: "digest", Usage: "BLAKE2b-256 content digest (hex)"},
			&cli.StringFlag{Name: "file", Usage: "file whose content digest to look up"},
			&cli.StringFlag{Name: "batch", Usage: "scan batch ID"},
			&cli.IntFlag{Name: "recent", Usage: "list the N most recent records"},
			&cli.BoolFlag{Name: "json", Usage: "print records as JSON"},
		},
		Action: env.lookup,
	}
}

func (e *cliEnv) lookup(c *cli.Context) error {
	set := 0
	for _, name := range []string{"hash", "digest", "file", "batch", "recent"} {
		if c.IsSet(name) {
			set++
		}
	}
	if set != 1 {
		return cli.Exit("give exactly one of --hash, --digest, --file, --batch or --recent", core.ExitCodeError)
	}

	database, err := e.openDatabase()
	if err != nil {
		return err
	}
	repo := db.NewRepository(database, nil)
	ctx := e.mgr.Context()

	var recs []*db.HashRecord
	switch {
	case c.IsSet("hash"):
		h, err := photodna.HashFromHex(c.String("hash"))
		if err != nil {
			return fmt.Errorf("invalid --hash: %w", err)
		}
		recs, err = repo.FindByHash(ctx, h)
		if err != nil {
			return err
		}
	case c.IsSet("digest"):
		recs, err = repo.FindByDigest(ctx, strings.ToLower(c.String("digest")))
	case c.IsSet("file"):
		digest, derr := core.ComputeBLAKE2b256(c.String("file"))
		if derr != nil {
			return derr
		}
		recs, err = repo.FindByDigest(ctx, digest)
	case c.IsSet("batch"):
		recs, err = repo.ListBatch(ctx, c.String("batch"))
	default:
		recs, err = repo.ListRecent(ctx, c.Int("recent"))
	}
	if err != nil {
		return err
	}

	if c.Bool("json") {
		out := make([]recordOutput, 0, len(recs))
		for _, rec := range recs {
			out = append(out, newRecordOutput(rec))
		}
		return e.printJSON(out)
	}
	if len(recs) == 0 {
		return cli.Exit("no matching records", core.ExitCodeError)
	}
	for _, rec := range recs {
		border := ""
		if rec.BorderlessHash != nil {
			border = color.CyanString(" [border]")
		}
		fmt.Fprintf(e.out, "%s  %s  %dx%d %-6s %s%s\n",
			rec.ID, rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.Width, rec.Height, rec.PixelFormat, rec.SourcePath, border)
	}
	return nil
}

func pruneCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "delete stored records older than the retention period",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "days",
				Usage: "retention in days (default " + core.EnvRetentionDays + ")",
			},
		},
		Action: env.prune,
	}
}

func (e *cliEnv) prune(c *cli.Context) error {
	days := e.cfg.RetentionDays
	if c.IsSet("days") {
		days = c.Int("days")
	}
	if days == 0 {
		fmt.Fprintln(e.out, "Retention is 0 days; keeping all records")
		return nil
	}

	database, err := e.openDatabase()
	if err != nil {
		return err
	}
	res, err := database.Cleanup(e.mgr.Context(), days)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Deleted %d records created before %s\n", res.Deleted, res.Cutoff.Format("2006-01-02 15:04:05"))
	return nil
}

func describeCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:      "describe",
		Usage:     "explain a native library status code",
		ArgsUsage: "<code>",
		Action:    env.describe,
	}
}

func (e *cliEnv) describe(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one status code", core.ExitCodeError)
	}
	code, err := strconv.ParseInt(c.Args().First(), 10, 32)
	if err != nil {
		return fmt.Errorf("invalid status code %q: %w", c.Args().First(), err)
	}

	fmt.Fprintf(e.out, "%d: %s\n", code, photodnaruntime.ErrorCodeDescription(int32(code)))
	if code < 0 {
		pe := photodna.FromErrorCode(int32(code))
		fmt.Fprintf(e.out, "kind: %s\n", pe.Kind)
		if pe.IsInputError() {
			fmt.Fprintln(e.out, "caused by the input image")
		} else if pe.IsRecoverable() {
			fmt.Fprintln(e.out, "may succeed on retry")
		}
	}
	return nil
}
