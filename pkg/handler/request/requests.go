package request

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/yumyai/uniref90/pkg/model"
)

// Query parameter names.
const (
	ParamClusterID = "cluster_id"
	ParamMinSize   = "min_size"
	ParamMaxSize   = "max_size"
	ParamLimit     = "limit"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Structure for size filtering
type SizeFilterRequest struct {
	Min_Size int `json:"min_size"` // Smallest cluster size, inclusive
	Max_Size int `json:"max_size"` // Largest cluster size, inclusive; 0 for no bound
	Limit    int `json:"limit"`    // Number of clusters returned
}

func (r SizeFilterRequest) Range() model.SizeRange {
	return model.SizeRange{Min: r.Min_Size, Max: r.Max_Size}
}

// ParseSizeFilter reads min_size, max_size and limit. Every problem found is
// reported at once.
func ParseSizeFilter(q url.Values) (SizeFilterRequest, error) {
	req := SizeFilterRequest{Min_Size: 1, Limit: DefaultLimit}
	var errs []string

	intParam := func(name string, dst *int) {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Sprintf("invalid %s value %q", name, raw))
			return
		}
		*dst = n
	}

	intParam(ParamMinSize, &req.Min_Size)
	intParam(ParamMaxSize, &req.Max_Size)
	intParam(ParamLimit, &req.Limit)

	if req.Max_Size != model.Unbounded && req.Max_Size < req.Min_Size {
		errs = append(errs, fmt.Sprintf("%s must not be below %s", ParamMaxSize, ParamMinSize))
	}
	if req.Limit == 0 || req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}

	if len(errs) > 0 {
		return req, errors.New(strings.Join(errs, "; "))
	}
	return req, nil
}

// ClusterID reads a required cluster_id, from the path when set there.
func ClusterID(pathValue string, q url.Values) (string, error) {
	id := strings.TrimSpace(pathValue)
	if id == "" {
		id = strings.TrimSpace(q.Get(ParamClusterID))
	}
	if id == "" {
		return "", fmt.Errorf("missing %s", ParamClusterID)
	}
	return id, nil
}
