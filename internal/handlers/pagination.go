package handlers

import (
	"math"
	"strconv"

	"storefront/internal/apperr"
)

const (
	defaultPageLimit = int64(20)
	maxPageLimit     = int64(100)
	maxPage          = math.MaxInt64 / maxPageLimit
)

func parsePaginationParams(pageStr, limitStr string) (int64, int64, error) {
	page := int64(1)
	limit := defaultPageLimit

	if pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return 0, 0, apperr.Validation("page must be a positive integer")
		}
		if p > maxPage {
			return 0, 0, apperr.Validation("page is out of range")
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 {
			return 0, 0, apperr.Validation("limit must be a positive integer")
		}
		limit = l
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return page, limit, nil
}
