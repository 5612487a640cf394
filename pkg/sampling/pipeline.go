package sampling

import (
	"fmt"

	"fabrictensor/internal/models"
	"fabrictensor/pkg/acf"
	"fabrictensor/pkg/ellipsoid"
	"fabrictensor/pkg/envelope"
	"fabrictensor/pkg/fabric"
	"fabrictensor/pkg/zoom"
)

// Pipeline is the per-sample chain ACF → zoom → envelope → fit → tensor.
// It holds only configuration and is safe for concurrent use.
type Pipeline struct {
	threshold float64
	method    envelope.Method
	zoom      ZoomParams
}

// NewPipeline validates p and returns the chain it describes.
func NewPipeline(p Params) (*Pipeline, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	method, err := envelope.ParseMethod(string(p.Method))
	if err != nil {
		return nil, err
	}
	return &Pipeline{threshold: p.Threshold, method: method, zoom: p.Zoom}, nil
}

// Run measures the fabric of roi. roiSize is the nominal ROI edge used for
// the outlier bound; it is not reduced when the ROI was clamped at the
// volume border.
func (pl *Pipeline) Run(roi models.Volume, roiSize int) (fabric.Sample, error) {
	field, err := acf.Autocorrelate(roi)
	if err != nil {
		return fabric.NaNSample(), fmt.Errorf("autocorrelation: %w", err)
	}

	if pl.zoom.Enabled {
		field, err = zoom.Center(field, pl.zoom.options())
		if err != nil {
			return fabric.NaNSample(), fmt.Errorf("zoom: %w", err)
		}
	}

	points, err := envelope.Envelope(field, pl.threshold, pl.method)
	if err != nil {
		return fabric.NaNSample(), fmt.Errorf("envelope: %w", err)
	}

	e, err := ellipsoid.Fit(points)
	if err != nil {
		return fabric.NaNSample(), err
	}

	return fabric.Assemble(e.Axes, e.Radii, fabric.BoundsFor(roiSize, pl.zoom.EffectiveFactor())), nil
}
