package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gocv.io/x/gocv"

	deepscores "github.com/scorevision/go-deepscores"
	"github.com/scorevision/go-deepscores/coco"
	"github.com/scorevision/go-deepscores/voc"
)

const (
	// BraceCategory is never emitted to the output corpus
	BraceCategory = "brace"

	// DefaultProgressInterval is the number of files between progress
	// notifications
	DefaultProgressInterval = 50
)

// Progress is the hook invoked periodically during a run with the number of
// files finished so far and the total file count.  It is called every
// ProgressInterval files and once at completion
type Progress func(done, total int)

// Lookups bundles the externally supplied lookup tables.  All four are read
// only for the lifetime of a run
type Lookups struct {
	// Categories maps category name to category id
	Categories deepscores.CategoryLookup
	// Images maps image name to image id
	Images deepscores.ImageLookup
	// ClassColors maps category name to its reserved mask intensity
	ClassColors deepscores.ClassColorLookup
	// Train holds the image names of the training split
	Train deepscores.TrainSet
}

// Options configures a conversion run
type Options struct {
	// Workers is the number of files processed concurrently.  Values
	// below 2 select the sequential path.  Output is identical either
	// way, ids are always assigned in file-then-object order
	Workers int
	// BestEffort skips files that fail to process instead of aborting
	// the whole run.  Skipped files are reported through OnSkip
	BestEffort bool
	// ProgressInterval overrides DefaultProgressInterval when > 0
	ProgressInterval int
	// WorkDir is the directory for disk-backed annotation lists.  When
	// empty the lists are held in memory
	WorkDir string
	// Progress is the optional progress hook
	Progress Progress
	// OnSkip is the optional hook invoked with the file name and error
	// when BestEffort drops a file
	OnSkip func(file string, err error)
}

// Converter runs the annotation conversion pipeline over a dataset
type Converter struct {
	lk   Lookups
	opts Options
}

// NewConverter returns a converter using the given lookups and options
func NewConverter(lk Lookups, opts Options) *Converter {

	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}

	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	return &Converter{
		lk:   lk,
		opts: opts,
	}
}

// fileResult holds the finished records of one XML file before ids are
// assigned
type fileResult struct {
	idx     int
	imgName string
	width   int
	height  int
	records []coco.Annotation
	err     error
}

// Result holds the output of one conversion run: the two ordered annotation
// lists plus the image descriptors routed to each split
type Result struct {
	Train       coco.AnnotationList
	Val         coco.AnnotationList
	TrainImages []coco.Image
	ValImages   []coco.Image
}

// Close releases both annotation lists
func (r *Result) Close() error {

	err := r.Train.Close()

	if err2 := r.Val.Close(); err == nil {
		err = err2
	}

	return err
}

// Run converts every XML annotation in xmlDir, reading the matching
// segmentation masks from pixDir, and returns the train and validation
// annotation lists.  Files are processed in sorted name order and objects in
// file order, and annotation ids are assigned sequentially from 1 across
// both lists in that order, so a fixed input set always produces identical
// output.
//
// The run stops at the first error unless Options.BestEffort is set, and
// honours ctx cancellation at file granularity.  On error any partial lists
// are closed and discarded
func (c *Converter) Run(ctx context.Context, pixDir, xmlDir string) (*Result, error) {

	files, err := listXMLFiles(xmlDir)

	if err != nil {
		return nil, err
	}

	train, err := c.newList("train")

	if err != nil {
		return nil, err
	}

	val, err := c.newList("val")

	if err != nil {
		train.Close()
		return nil, err
	}

	res := &Result{
		Train: train,
		Val:   val,
	}

	fin := newFinisher(c, res, len(files))

	if c.opts.Workers > 1 {
		err = c.runParallel(ctx, pixDir, xmlDir, files, fin)
	} else {
		err = c.runSequential(ctx, pixDir, xmlDir, files, fin)
	}

	if err != nil {
		res.Close()
		return nil, err
	}

	return res, nil
}

// runSequential processes one file at a time, appending finished records as
// it goes
func (c *Converter) runSequential(ctx context.Context, pixDir, xmlDir string,
	files []string, fin *finisher) error {

	for i, file := range files {

		if err := ctx.Err(); err != nil {
			return err
		}

		res := c.processFile(pixDir, xmlDir, i, file)

		if err := fin.finish(res, file); err != nil {
			return err
		}
	}

	return nil
}

// runParallel fans files out to a worker pool and reassembles the results in
// file order before assigning ids, so the output is byte identical to the
// sequential path
func (c *Converter) runParallel(ctx context.Context, pixDir, xmlDir string,
	files []string, fin *finisher) error {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make(chan fileResult, c.opts.Workers)

	var wg sync.WaitGroup

	for w := 0; w < c.opts.Workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range jobs {

				if ctx.Err() != nil {
					return
				}

				select {
				case results <- c.processFile(pixDir, xmlDir, i, files[i]):
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)

		for i := range files {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// collect out of order results and flush them in file order
	pending := make(map[int]fileResult)
	next := 0

	for next < len(files) {

		var res fileResult
		var ok bool

		select {
		case res, ok = <-results:
			if !ok {
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}

		pending[res.idx] = res

		for {
			buf, ok := pending[next]

			if !ok {
				break
			}

			delete(pending, next)
			next++

			if err := fin.finish(buf, files[buf.idx]); err != nil {
				return err
			}
		}
	}

	return nil
}

// finisher performs the single deterministic finishing pass: it assigns the
// shared sequential id to each record, routes it to the train or validation
// list and fires the progress hook
type finisher struct {
	c       *Converter
	res     *Result
	total   int
	done    int
	counter int
}

func newFinisher(c *Converter, res *Result, total int) *finisher {
	return &finisher{
		c:       c,
		res:     res,
		total:   total,
		counter: 1,
	}
}

func (f *finisher) finish(res fileResult, file string) error {

	skipped := false

	if res.err != nil {

		// a failed lookup aborts even in best effort mode, a silently
		// dropped record would corrupt downstream dataset statistics
		if !f.c.opts.BestEffort || errors.Is(res.err, deepscores.ErrLookup) {
			return res.err
		}

		if f.c.opts.OnSkip != nil {
			f.c.opts.OnSkip(file, res.err)
		}

		skipped = true
	}

	inTrain := f.c.lk.Train.Contains(res.imgName)
	list := f.res.Val

	if inTrain {
		list = f.res.Train
	}

	if !skipped {

		img := coco.Image{
			ID:       f.c.lk.Images[res.imgName],
			FileName: res.imgName + ".png",
			Width:    res.width,
			Height:   res.height,
		}

		if inTrain {
			f.res.TrainImages = append(f.res.TrainImages, img)
		} else {
			f.res.ValImages = append(f.res.ValImages, img)
		}

		for _, rec := range res.records {
			rec.ID = f.counter
			f.counter++

			if err := list.Append(rec); err != nil {
				return err
			}
		}
	}

	f.done++

	if f.c.opts.Progress != nil &&
		(f.done%f.c.opts.ProgressInterval == 0 || f.done == f.total) {
		f.c.opts.Progress(f.done, f.total)
	}

	return nil
}

// processFile runs the conversion pipeline over one XML file and its
// segmentation mask, returning records without ids assigned
func (c *Converter) processFile(pixDir, xmlDir string, idx int, file string) fileResult {

	imgName := strings.SplitN(file, ".", 2)[0]

	res := fileResult{
		idx:     idx,
		imgName: imgName,
	}

	ann, err := voc.ParseFile(filepath.Join(xmlDir, file))

	if err != nil {
		res.err = err
		return res
	}

	maskPath := filepath.Join(pixDir, imgName+".png")
	mask := gocv.IMRead(maskPath, gocv.IMReadGrayScale)

	defer mask.Close()

	if mask.Empty() {
		res.err = fmt.Errorf("%w: cannot read %s",
			deepscores.ErrImageLoad, maskPath)
		return res
	}

	if mask.Cols() != int(ann.Width) || mask.Rows() != int(ann.Height) {
		res.err = fmt.Errorf("%w: %s is %dx%d but xml declares %gx%g",
			deepscores.ErrImageLoad, maskPath, mask.Cols(), mask.Rows(),
			ann.Width, ann.Height)
		return res
	}

	res.width = mask.Cols()
	res.height = mask.Rows()

	imgID, ok := c.lk.Images[imgName]

	if !ok {
		res.err = fmt.Errorf("%w: image %q", deepscores.ErrLookup, imgName)
		return res
	}

	for _, obj := range ann.Objects {

		if obj.Name == BraceCategory {
			continue
		}

		categoryID, ok := c.lk.Categories[obj.Name]

		if !ok {
			res.err = fmt.Errorf("%w: category %q",
				deepscores.ErrLookup, obj.Name)
			return res
		}

		color, ok := c.lk.ClassColors[obj.Name]

		if !ok {
			res.err = fmt.Errorf("%w: class color for %q",
				deepscores.ErrLookup, obj.Name)
			return res
		}

		box, err := DenormalizeBBox(obj, ann.Width, ann.Height)

		if err != nil {
			res.err = err
			return res
		}

		window := CropWindow(box, mask.Cols(), mask.Rows())
		bm, area := ExtractBinaryMask(mask, window, uint8(color))

		res.records = append(res.records, coco.Annotation{
			Segmentation: coco.EncodeRLE(bm),
			Area:         area,
			IsCrowd:      0,
			ImageID:      imgID,
			BBox:         box,
			CategoryID:   categoryID,
		})
	}

	return res
}

// newList creates an annotation list, disk-backed when a work directory is
// configured
func (c *Converter) newList(name string) (coco.AnnotationList, error) {

	if c.opts.WorkDir == "" {
		return coco.NewMemoryList(), nil
	}

	return coco.NewSpillList(c.opts.WorkDir, name)
}

// Categories builds the corpus category descriptors from the category
// lookup, sorted by id.  The brace category never appears in the output
func Categories(lk deepscores.CategoryLookup) []coco.Category {

	cats := make([]coco.Category, 0, len(lk))

	for name, id := range lk {

		if name == BraceCategory {
			continue
		}

		cats = append(cats, coco.Category{ID: id, Name: name})
	}

	sort.Slice(cats, func(i, j int) bool {
		return cats[i].ID < cats[j].ID
	})

	return cats
}

// listXMLFiles returns the XML file names in dir in sorted order
func listXMLFiles(dir string) ([]string, error) {

	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))

	for _, e := range entries {

		if e.IsDir() {
			continue
		}

		if strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			files = append(files, e.Name())
		}
	}

	sort.Strings(files)

	return files, nil
}
