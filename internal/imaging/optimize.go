package imaging

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/designexport/internal/model"
)

// Search parameters, in tenths so repeated decrements stay exact.
const (
	minQualityTenths  = 1
	minScaleTenths    = 5
	scalePhaseQuality = 0.8
	floorQuality      = 0.1
	floorScale        = 0.5
)

// OptimizeToSize loads sourceURL and searches for a variant no larger than
// maxBytes. See Optimize.
func (p *Pipeline) OptimizeToSize(ctx context.Context, sourceURL string, maxBytes int64, opts Options) (*model.ProcessedImage, error) {
	src, err := p.Load(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	return p.Optimize(src, maxBytes, opts)
}

// Optimize re-renders src with decreasing quality, then decreasing scale,
// until the encoded size fits maxBytes. The search is strictly decreasing
// and bounded:
//
//  1. quality from opts.Quality down to 0.1 in steps of 0.1 (lossy formats
//     only; quality has no effect on the others),
//  2. scale from opts.Scale down to 0.5 in steps of 0.1 at quality 0.8,
//  3. one floor attempt at quality 0.1, scale 0.5, returned even if it is
//     still over budget.
//
// A failed attempt does not stop the search. An error is returned only when
// no attempt produced an image.
func (p *Pipeline) Optimize(src image.Image, maxBytes int64, opts Options) (*model.ProcessedImage, error) {
	opts = opts.withDefaults()

	var (
		smallest *model.ProcessedImage
		lastErr  error
		attempts int
	)
	attempt := func(quality, scale float64) *model.ProcessedImage {
		attempts++
		o := opts
		o.Quality = quality
		o.Scale = scale
		res, err := p.Render(src, o)
		if err != nil {
			lastErr = err
			log.Warn().Err(err).
				Float64("quality", quality).
				Float64("scale", scale).
				Msg("Size optimization attempt failed")
			return nil
		}
		if smallest == nil || res.SizeBytes < smallest.SizeBytes {
			smallest = res
		}
		return res
	}
	fits := func(res *model.ProcessedImage) bool {
		return res != nil && int64(res.SizeBytes) <= maxBytes
	}
	done := func(res *model.ProcessedImage) (*model.ProcessedImage, error) {
		log.Debug().
			Int64("max_bytes", maxBytes).
			Int("size_bytes", res.SizeBytes).
			Float64("quality", res.Quality).
			Float64("scale", res.Scale).
			Int("attempts", attempts).
			Msg("Size budget met")
		return res, nil
	}

	q := toTenths(opts.Quality)
	res := attempt(float64(q)/10, opts.Scale)
	if opts.Format.Lossy() {
		for !fits(res) && q > minQualityTenths {
			q--
			res = attempt(float64(q)/10, opts.Scale)
		}
	}
	if fits(res) {
		return done(res)
	}

	s := toTenths(opts.Scale)
	for s > minScaleTenths {
		s--
		res = attempt(scalePhaseQuality, float64(s)/10)
		if fits(res) {
			return done(res)
		}
	}

	res = attempt(floorQuality, floorScale)
	if res == nil {
		res = smallest
	}
	if res == nil {
		return nil, fmt.Errorf("size optimization failed after %d attempts: %w", attempts, lastErr)
	}
	log.Warn().
		Int64("max_bytes", maxBytes).
		Int("size_bytes", res.SizeBytes).
		Int("attempts", attempts).
		Msg("Size budget not reachable, returning floor variant")
	return res, nil
}

func toTenths(v float64) int {
	return int(math.Round(v * 10))
}
