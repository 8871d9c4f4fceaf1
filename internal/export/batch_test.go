package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/designexport/internal/imaging"
	"github.com/dharsanguruparan/designexport/internal/model"
)

func batchRequest(formats []model.Format, scales []model.Scale) model.BatchRequest {
	return model.BatchRequest{
		DesignFileID:   testDesignFile,
		SourceImageURL: testSource,
		BaseName:       "logo",
		Formats:        formats,
		Scales:         scales,
	}
}

func TestConfigurationsOrder(t *testing.T) {
	got := Configurations([]model.Format{model.FormatPNG, model.FormatWebP}, []model.Scale{1, 2})
	assert.Equal(t, []model.BatchExportConfig{
		{Format: model.FormatPNG, Scale: 1},
		{Format: model.FormatPNG, Scale: 2},
		{Format: model.FormatWebP, Scale: 1},
		{Format: model.FormatWebP, Scale: 2},
	}, got)
}

func TestBatchExportOrderAndNames(t *testing.T) {
	f := newFixture(t, staticLoader{flatImage(80, 60)}, imaging.StdEncoder{})

	res, err := f.svc.BatchExport(context.Background(),
		batchRequest([]model.Format{model.FormatPNG, model.FormatWebP}, []model.Scale{1, 2}))
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalProcessed)
	assert.Equal(t, 4, res.TotalSuccessful)
	assert.Equal(t, 0, res.TotalFailed)
	require.Len(t, res.Successful, 4)
	assert.Empty(t, res.Failed)

	want := []struct {
		format model.Format
		scale  model.Scale
		name   string
		width  int
	}{
		{model.FormatPNG, 1, "logo-1x", 80},
		{model.FormatPNG, 2, "logo-2x", 160},
		{model.FormatWebP, 1, "logo-1x", 80},
		{model.FormatWebP, 2, "logo-2x", 160},
	}
	for i, w := range want {
		got := res.Successful[i]
		assert.Equal(t, w.format, got.Format, "item %d", i)
		assert.Equal(t, w.scale, got.Scale, "item %d", i)
		assert.Equal(t, w.name, got.Name, "item %d", i)
		assert.Equal(t, w.width, got.Width, "item %d", i)
	}
}

func TestBatchExportCardinality(t *testing.T) {
	f := newFixture(t, staticLoader{flatImage(20, 20)}, imaging.StdEncoder{})

	formats := []model.Format{model.FormatPNG, model.FormatJPG, model.FormatWebP, model.FormatSVG}
	scales := []model.Scale{1, 2, 3}
	res, err := f.svc.BatchExport(context.Background(), batchRequest(formats, scales))
	require.NoError(t, err)

	assert.Equal(t, len(formats)*len(scales), res.TotalProcessed)
	assert.Equal(t, res.TotalProcessed, len(res.Successful)+len(res.Failed))
	assert.Equal(t, res.TotalSuccessful, len(res.Successful))
	assert.Equal(t, res.TotalFailed, len(res.Failed))
}

func TestBatchExportIsolatesFailures(t *testing.T) {
	encoder := formatFailEncoder{fail: model.FormatWebP, inner: imaging.StdEncoder{}}
	f := newFixture(t, staticLoader{flatImage(20, 20)}, encoder)

	res, err := f.svc.BatchExport(context.Background(),
		batchRequest([]model.Format{model.FormatPNG, model.FormatWebP, model.FormatJPG}, []model.Scale{2}))
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalProcessed)
	assert.Equal(t, 2, res.TotalSuccessful)
	assert.Equal(t, 1, res.TotalFailed)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, model.BatchExportConfig{Format: model.FormatWebP, Scale: 2}, res.Failed[0].Config)
	assert.Contains(t, res.Failed[0].ErrorMessage, "asset export failed")

	require.Len(t, res.Successful, 2)
	assert.Equal(t, model.FormatPNG, res.Successful[0].Format)
	assert.Equal(t, model.FormatJPG, res.Successful[1].Format)
	assert.Equal(t, 2, f.objects.Len())
}

func TestBatchExportMetadataFailuresAreCaptured(t *testing.T) {
	f := newFixture(t, staticLoader{flatImage(20, 20)}, imaging.StdEncoder{})
	f.svc.assets = failingInsertStore{f.assets}

	res, err := f.svc.BatchExport(context.Background(),
		batchRequest([]model.Format{model.FormatPNG}, []model.Scale{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalFailed)
	assert.Zero(t, f.objects.Len(), "every upload rolled back")
}

func TestBatchExportRequestValidation(t *testing.T) {
	f := newFixture(t, staticLoader{flatImage(20, 20)}, imaging.StdEncoder{})
	ctx := context.Background()

	_, err := f.svc.BatchExport(ctx, batchRequest(nil, []model.Scale{1}))
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = f.svc.BatchExport(ctx, batchRequest([]model.Format{model.FormatPNG}, nil))
	assert.ErrorIs(t, err, ErrInvalidScale)

	_, err = f.svc.BatchExport(ctx, batchRequest([]model.Format{model.FormatPNG}, []model.Scale{5}))
	assert.ErrorIs(t, err, ErrInvalidScale)

	_, err = f.svc.BatchExport(ctx, batchRequest([]model.Format{"bmp"}, []model.Scale{1}))
	assert.ErrorIs(t, err, ErrInvalidFormat)

	assert.Zero(t, f.objects.Len())
}
