package handlers

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
)

func TestParsePaginationParams(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, page)
	assert.EqualValues(t, defaultPageLimit, limit)

	_, limit, err = parsePaginationParams("2", "5000")
	require.NoError(t, err)
	assert.EqualValues(t, maxPageLimit, limit)

	for _, p := range []string{"0", "-1", "x", strconv.FormatInt(maxPage+1, 10), "9223372036854775807"} {
		_, _, err := parsePaginationParams(p, "100")
		assert.True(t, apperr.Is(err, apperr.KindValidation), "page %s", p)
	}
}

func TestOrdersHugePageIsRejected(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/orders?page=9223372036854775807&limit=100", token(t, "u1", ""), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/admin/orders?page="+strconv.FormatInt(maxPage, 10)+"&limit=100", token(t, "admin1", "admin"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
