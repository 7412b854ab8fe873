// deepscores2coco converts the DeepScores segmentation masks and XML object
// annotations into COCO style train and validation annotation files.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	deepscores "github.com/scorevision/go-deepscores"
	"github.com/scorevision/go-deepscores/coco"
	"github.com/scorevision/go-deepscores/convert"
)

// Config holds the conversion settings read from the JSON config file.
// CLI flags override individual values
type Config struct {
	// PixAnnotationsDir is the directory with the segmentation mask images
	PixAnnotationsDir string `json:"pix_annotations_dir"`
	// XMLAnnotationsDir is the directory with the XML object annotations
	XMLAnnotationsDir string `json:"xml_annotations_dir"`
	// ClassNames is the path to the class_names.csv lookup file
	ClassNames string `json:"class_names"`
	// TrainSet is the path to the training split membership file
	TrainSet string `json:"train_set"`
	// OutDir is the directory the output JSON files are written to
	OutDir string `json:"out_dir"`
	// WorkDir enables disk-backed annotation lists when set
	WorkDir string `json:"work_dir"`
	// Workers is the number of files converted concurrently
	Workers int `json:"workers"`
	// BestEffort skips files that fail to convert instead of aborting
	BestEffort bool `json:"best_effort"`
}

func loadConfig(path string) (Config, error) {

	var cfg Config

	data, err := os.ReadFile(path)

	if err != nil {
		return cfg, err
	}

	err = json.Unmarshal(data, &cfg)
	return cfg, err
}

func main() {

	configFile := flag.String("c", "config.json", "Path to the JSON configuration file")
	workers := flag.Int("w", 0, "Number of worker routines, overrides the config value")
	workDir := flag.String("work-dir", "", "Work directory for disk backed annotation lists, overrides the config value")
	bestEffort := flag.Bool("best-effort", false, "Skip files that fail to convert instead of aborting the run")
	verbose := flag.Bool("v", false, "Enable debug logging")

	flag.Parse()

	logLevel := zerolog.InfoLevel

	if *verbose {
		logLevel = zerolog.DebugLevel
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(logLevel).
		With().
		Timestamp().
		Logger()

	cfg, err := loadConfig(*configFile)

	if err != nil {
		log.Fatal().Err(err).Msg("Error loading configuration")
	}

	if *workers > 0 {
		cfg.Workers = *workers
	}

	if *workDir != "" {
		cfg.WorkDir = *workDir
	}

	if *bestEffort {
		cfg.BestEffort = true
	}

	// load the lookup tables
	categories, classColors, err := deepscores.LoadClassNames(cfg.ClassNames)

	if err != nil {
		log.Fatal().Err(err).Msg("Error loading class names")
	}

	trainSet, err := deepscores.LoadTrainSet(cfg.TrainSet)

	if err != nil {
		log.Fatal().Err(err).Msg("Error loading train set")
	}

	// image ids are assigned from the sorted xml directory listing
	xmlFiles, err := imageNames(cfg.XMLAnnotationsDir)

	if err != nil {
		log.Fatal().Err(err).Msg("Error listing annotations")
	}

	lookups := convert.Lookups{
		Categories:  categories,
		Images:      deepscores.BuildImageLookup(xmlFiles),
		ClassColors: classColors,
		Train:       trainSet,
	}

	opts := convert.Options{
		Workers:    cfg.Workers,
		BestEffort: cfg.BestEffort,
		WorkDir:    cfg.WorkDir,
		Progress: func(done, total int) {
			log.Info().Int("done", done).Int("total", total).
				Msg("Processed xml files")
		},
		OnSkip: func(file string, err error) {
			log.Warn().Str("file", file).Err(err).
				Msg("Skipping file")
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("Processing annotations")

	conv := convert.NewConverter(lookups, opts)
	res, err := conv.Run(ctx, cfg.PixAnnotationsDir, cfg.XMLAnnotationsDir)

	if err != nil {
		log.Fatal().Err(err).Msg("Conversion failed")
	}

	defer res.Close()

	writeCorpus(log, res, lookups, cfg.OutDir)
}

// writeCorpus writes the train and validation corpus files and logs their
// summary statistics
func writeCorpus(log zerolog.Logger, res *convert.Result,
	lookups convert.Lookups, outDir string) {

	categories := convert.Categories(lookups.Categories)

	splits := []struct {
		name   string
		corpus coco.Corpus
	}{
		{"deepscores_train.json", coco.Corpus{
			Images:      res.TrainImages,
			Annotations: res.Train,
			Categories:  categories,
		}},
		{"deepscores_val.json", coco.Corpus{
			Images:      res.ValImages,
			Annotations: res.Val,
			Categories:  categories,
		}},
	}

	for _, split := range splits {

		path := filepath.Join(outDir, split.name)

		if err := split.corpus.WriteFile(path); err != nil {
			log.Fatal().Err(err).Str("path", path).
				Msg("Error writing corpus")
		}

		summary, err := coco.Summarize(split.corpus.Annotations)

		if err != nil {
			log.Fatal().Err(err).Msg("Error summarizing corpus")
		}

		log.Info().
			Str("path", path).
			Int("images", len(split.corpus.Images)).
			Int("annotations", summary.Count).
			Float64("area_mean", summary.AreaMean).
			Float64("area_stddev", summary.AreaStdDev).
			Msg("Corpus written")
	}
}

// imageNames returns the image name for every xml annotation in dir
func imageNames(dir string) ([]string, error) {

	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))

	for _, e := range entries {

		// same case-insensitive match as the converter's file listing,
		// so every converted file has an image id
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			continue
		}

		// image name is everything before the first dot, matching the
		// converter's file name handling
		names = append(names, strings.SplitN(e.Name(), ".", 2)[0])
	}

	return names, nil
}
