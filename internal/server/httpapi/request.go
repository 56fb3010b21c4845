package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/countdown/internal/common"
)

const maxBodyBytes = 1 << 20

type timerRequest struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Days json.RawMessage `json:"days"`
}

// decodeBody reads an optional JSON object. An empty body leaves req zeroed.
func decodeBody(w http.ResponseWriter, r *http.Request, req *timerRequest) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: request body: %v", common.ErrValidation, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, req); err != nil {
		return fmt.Errorf("%w: malformed JSON body", common.ErrValidation)
	}
	return nil
}

// parseDays accepts a JSON number or a numeric string holding a whole number.
func parseDays(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("%w: days is required", common.ErrValidation)
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("%w: days must be a number", common.ErrValidation)
		}
		text = strings.TrimSpace(text)
	}

	if n, err := strconv.Atoi(text); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: days must be a number", common.ErrValidation)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: days must be a whole number", common.ErrValidation)
	}
	if math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: days is out of range", common.ErrValidation)
	}
	return int(f), nil
}
