package gcp

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"

	"legaldoc-ai/internal/config"
	"legaldoc-ai/internal/extract"
)

// VisionOCR runs TEXT_DETECTION against Cloud Vision.
type VisionOCR struct {
	client *vision.ImageAnnotatorClient
}

func NewVisionOCR(ctx context.Context, cfg config.GCPConfig) (*VisionOCR, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, ClientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create vision client failed: %w", err)
	}
	return &VisionOCR{client: client}, nil
}

// DetectText returns the full text annotation, which is the first entry of
// the text annotations. An image without text yields "".
func (v *VisionOCR) DetectText(ctx context.Context, image []byte) (string, error) {
	resp, err := v.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_TEXT_DETECTION}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", extract.ErrOCRFailed, err)
	}
	results := resp.GetResponses()
	if len(results) == 0 {
		return "", nil
	}
	result := results[0]
	if msg := result.GetError().GetMessage(); msg != "" {
		return "", fmt.Errorf("%w: %s", extract.ErrOCRFailed, msg)
	}
	annotations := result.GetTextAnnotations()
	if len(annotations) == 0 {
		return "", nil
	}
	return annotations[0].GetDescription(), nil
}

func (v *VisionOCR) Close() error {
	return v.client.Close()
}
