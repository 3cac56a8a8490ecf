package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"go_photodna/core"
	"go_photodna/db"
	"go_photodna/logging"
	"go_photodna/photodna"
	"go_photodna/shutdown"
	"go_photodna/vision"
)

// hashOutput is the --json form of hash and border results.
type hashOutput struct {
	Path           string      `json:"path"`
	Width          int         `json:"width"`
	Height         int         `json:"height"`
	PixelFormat    string      `json:"pixel_format"`
	Hash           string      `json:"hash"`
	BorderlessHash string      `json:"borderless_hash,omitempty"`
	Region         *regionJSON `json:"region,omitempty"`
	RecordID       string      `json:"record_id,omitempty"`
}

type regionJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func imageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "pixel format handed to the library (rgb, bgr, rgba, bgra, argb, abgr, rgba-pm, gray8)",
		},
		&cli.IntFlag{
			Name:  "max-dim",
			Usage: "downscale so neither side exceeds this many pixels (0 keeps the original size)",
		},
		&cli.StringFlag{
			Name:  "region",
			Usage: "hash only the sub-region x,y,w,h",
		},
		&cli.BoolFlag{
			Name:  "no-rotate-flip",
			Usage: "skip the library's rotation and flip normalization",
		},
		&cli.BoolFlag{
			Name:  "upper",
			Usage: "print hashes in upper-case hex",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print the result as JSON",
		},
		&cli.BoolFlag{
			Name:  "store",
			Usage: "save the result to the hash database",
		},
	}
}

func hashCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:      "hash",
		Usage:     "compute the PhotoDNA hash of an image",
		ArgsUsage: "<image>",
		Flags: append(imageFlags(), &cli.BoolFlag{
			Name:  "remove-border",
			Usage: "ask the library to remove a detected border before hashing",
		}),
		Action: env.hash,
	}
}

func borderCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:      "border",
		Usage:     "detect a border and hash the image with and without it",
		ArgsUsage: "<image>",
		Flags:     imageFlags(),
		Action:    env.border,
	}
}

func (e *cliEnv) hash(c *cli.Context) error {
	path, px, region, err := e.loadImage(c)
	if err != nil {
		return err
	}
	gen, err := e.generator(nil)
	if err != nil {
		return err
	}

	opts := px.HashOptions().
		WithRemoveBorder(c.Bool("remove-border")).
		WithNoRotateFlip(c.Bool("no-rotate-flip"))

	start := time.Now()
	var h photodna.Hash
	if region != nil {
		h, err = gen.ComputeHashSubregion(px.Data, px.Width, px.Height, px.Stride, *region, opts)
	} else {
		h, err = gen.ComputeHashWithStride(px.Data, px.Width, px.Height, px.Stride, opts)
	}
	if err != nil {
		return fmt.Errorf("hash %s: %w", path, err)
	}
	e.logHash(photodna.OpHash, path, px, time.Since(start), false, h)

	out := hashOutput{
		Path:        path,
		Width:       px.Width,
		Height:      px.Height,
		PixelFormat: px.Format.String(),
		Hash:        hexOf(h, c.Bool("upper")),
	}
	if c.Bool("store") {
		rec, err := e.newRecord(path, px, h)
		if err != nil {
			return err
		}
		if err := e.storeRecord(rec); err != nil {
			return err
		}
		out.RecordID = rec.ID.String()
	}

	if c.Bool("json") {
		return e.printJSON(out)
	}
	fmt.Fprintln(e.out, out.Hash)
	if out.RecordID != "" {
		fmt.Fprintf(e.errOut, "stored as %s\n", out.RecordID)
	}
	return nil
}

func (e *cliEnv) border(c *cli.Context) error {
	path, px, region, err := e.loadImage(c)
	if err != nil {
		return err
	}
	gen, err := e.generator(nil)
	if err != nil {
		return err
	}

	opts := px.HashOptions().WithNoRotateFlip(c.Bool("no-rotate-flip"))

	start := time.Now()
	var res photodna.BorderHashResult
	if region != nil {
		res, err = gen.ComputeHashWithBorderDetectionSubregion(px.Data, px.Width, px.Height, px.Stride, *region, opts)
	} else {
		res, err = gen.ComputeHashWithBorderDetection(px.Data, px.Width, px.Height, opts)
	}
	if err != nil {
		return fmt.Errorf("border detection %s: %w", path, err)
	}
	e.logHash(photodna.OpBorderDetection, path, px, time.Since(start), res.HasBorder(), res.Primary)

	upper := c.Bool("upper")
	out := hashOutput{
		Path:        path,
		Width:       px.Width,
		Height:      px.Height,
		PixelFormat: px.Format.String(),
		Hash:        hexOf(res.Primary, upper),
	}
	if res.HasBorder() {
		out.BorderlessHash = hexOf(*res.Borderless, upper)
		r := res.ContentRegion
		out.Region = &regionJSON{X: r.X, Y: r.Y, W: r.W, H: r.H}
	}
	if c.Bool("store") {
		rec, err := e.newRecord(path, px, res.Primary)
		if err != nil {
			return err
		}
		if err := e.storeRecord(rec.WithBorder(res)); err != nil {
			return err
		}
		out.RecordID = rec.ID.String()
	}

	if c.Bool("json") {
		return e.printJSON(out)
	}

	label := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(e.out, "%s %s\n", label("primary:   "), out.Hash)
	if out.Region == nil {
		fmt.Fprintf(e.out, "%s %s\n", label("borderless:"), color.YellowString("none (no border detected)"))
	} else {
		fmt.Fprintf(e.out, "%s %s\n", label("borderless:"), out.BorderlessHash)
		fmt.Fprintf(e.out, "%s %d,%d,%d,%d\n", label("region:    "), out.Region.X, out.Region.Y, out.Region.W, out.Region.H)
	}
	if out.RecordID != "" {
		fmt.Fprintf(e.out, "%s %s\n", label("record:    "), out.RecordID)
	}
	return nil
}

// loadImage reads the single image argument and the image flags.
func (e *cliEnv) loadImage(c *cli.Context) (string, vision.Pixels, *photodna.Region, error) {
	if c.NArg() != 1 {
		return "", vision.Pixels{}, nil, cli.Exit("expected exactly one image path", core.ExitCodeError)
	}
	path := c.Args().First()

	format, err := e.pixelFormat(c)
	if err != nil {
		return "", vision.Pixels{}, nil, err
	}

	var region *photodna.Region
	if s := c.String("region"); s != "" {
		r, err := parseRegion(s)
		if err != nil {
			return "", vision.Pixels{}, nil, err
		}
		region = &r
	}

	px, err := vision.Prepare(path, format, c.Int("max-dim"))
	if err != nil {
		return "", vision.Pixels{}, nil, err
	}
	return path, px, region, nil
}

// pixelFormat returns the --format flag, falling back to the configured format.
func (e *cliEnv) pixelFormat(c *cli.Context) (photodna.PixelFormat, error) {
	name := c.String("format")
	if name == "" {
		name = e.cfg.PixelFormat
	}
	return photodna.ParsePixelFormat(name)
}

// parseRegion parses "x,y,w,h".
func parseRegion(s string) (photodna.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return photodna.Region{}, fmt.Errorf("invalid region %q: want x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return photodna.Region{}, fmt.Errorf("invalid region %q: %w", s, err)
		}
		v[i] = n
	}
	return photodna.Region{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}

func hexOf(h photodna.Hash, upper bool) string {
	if upper {
		return h.HexUpper()
	}
	return h.Hex()
}

func (e *cliEnv) printJSON(v interface{}) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (e *cliEnv) logHash(op, path string, px vision.Pixels, d time.Duration, border bool, h photodna.Hash) {
	e.logger.Info("Hash computed",
		zap.String("path", path),
		logging.HashFields(logging.HashMetrics{
			Operation:   op,
			Width:       px.Width,
			Height:      px.Height,
			PixelFormat: px.Format.String(),
			Duration:    d,
			BorderFound: border,
			HashLen:     h.Len(),
		}),
		zap.String("hash", h.Hex()),
	)
}

// newRecord builds a database record for a hash of the file at path.
func (e *cliEnv) newRecord(path string, px vision.Pixels, h photodna.Hash) (*db.HashRecord, error) {
	digest, err := core.ComputeBLAKE2b256(path)
	if err != nil {
		return nil, err
	}
	return db.NewHashRecord(path, digest, px.Width, px.Height, px.Format, h), nil
}

func (e *cliEnv) storeRecord(rec *db.HashRecord) error {
	database, err := e.openDatabase()
	if err != nil {
		return err
	}
	return db.NewRepository(database, nil).InsertHashRecord(e.mgr.Context(), rec)
}

// openDatabase opens the configured store and registers it for cleanup.
func (e *cliEnv) openDatabase() (*db.Database, error) {
	database, err := db.OpenWithConfig(db.ConnectionConfigFrom(e.cfg))
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", e.cfg.DBPath, err)
	}
	e.mgr.Register("database", shutdown.PriorityDatabase, shutdown.CloseFunc(e.logger, "database", database.Close))
	return database, nil
}
