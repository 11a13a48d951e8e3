package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/moffa90/go-sahara/images"
	"github.com/moffa90/go-sahara/loader"
)

// progressReporter renders loader progress as one bar per image or EFS region.
type progressReporter struct {
	out io.Writer
	bar *progressbar.ProgressBar
	key barKey
}

// barKey identifies the image or region a bar belongs to.
type barKey struct {
	phase      loader.Phase
	imagesDone int
}

func newProgressReporter(out io.Writer) *progressReporter {
	return &progressReporter{out: out}
}

// Update is a loader.ProgressCallback.
func (r *progressReporter) Update(p loader.Progress) {
	key := barKey{phase: p.Phase, imagesDone: p.ImagesDone}
	if r.bar == nil || key != r.key {
		r.finish()
		r.bar = r.newBar(p)
		r.key = key
	}

	_ = r.bar.Set(p.Bytes)
	if p.Done {
		r.finish()
	}
}

// newBar starts a bar. Image sizes are not announced by the modem, so
// transfer bars count bytes without a total.
func (r *progressReporter) newBar(p loader.Progress) *progressbar.ProgressBar {
	total := -1
	description := "EFS sync"
	if p.Phase == loader.PhaseTransfer {
		description = fmt.Sprintf("image %d", p.ImageID)
		if img, err := images.Lookup(p.ImageID); err == nil {
			description = fmt.Sprintf("image %d (%s)", img.ID, img.Name)
		}
	} else if p.Total > 0 {
		total = p.Total
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(r.out)
		}),
	)
}

func (r *progressReporter) finish() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	r.bar = nil
}
