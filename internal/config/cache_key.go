package config

import (
	"fmt"
	"strings"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CatalogKey returns the cache key for the subject/specialty catalog
func (r *CacheKeyStruct) CatalogKey() string {
	return "rankbrowser:catalog"
}

// USNewsRankKey returns the cache key for a university's resolved US News rank
func (r *CacheKeyStruct) USNewsRankKey(universityName string) string {
	return fmt.Sprintf("rankbrowser:usnews:%s", strings.ToLower(strings.TrimSpace(universityName)))
}

var CacheKey = NewCacheKeyStruct()
