package extractor

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cp25sy5-modjot/doc-extract-service/internal/domain"
)

// extractionPrompt instructs vision models to emit the raw block contract.
const extractionPrompt = `You are a document layout extraction model. Analyze the document image and report every text block you detect, in reading order.
Return STRICT JSON only, no markdown fences, no commentary: an array of objects of the form
[{"type": "<block type, e.g. title, text, table, figure>", "content": "<extracted text>", "bbox": [left, top, right, bottom]}]
where bbox coordinates are fractions of the image width/height in [0,1]. Omit "bbox" when the block has no reliable location.`

// parseBlocks decodes a model response into extracted blocks. Models wrap
// JSON in fences or prose often enough that we cut to the outermost array
// before unmarshalling.
func parseBlocks(raw string) ([]domain.ExtractedBlock, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in model response: %.100s", cleaned)
	}
	var blocks []domain.ExtractedBlock
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &blocks); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}
	return blocks, nil
}

func sniffMime(img []byte) string {
	return http.DetectContentType(img)
}
