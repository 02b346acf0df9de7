package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// pageParams reads page and page_size, leaving invalid values at zero so the
// service applies its defaults.
func pageParams(c *gin.Context) (int, int) {
	var page, size int
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("page_size", "0")); err == nil {
		size = v
	}
	return page, size
}
