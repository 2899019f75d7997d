package keys

import (
	"crypto/md5"
	"fmt"
	"strings"
)

const (
	// PfxHealthCheck is used for prefixing health check redis key
	PfxHealthCheck = "healthcheck"
	// PfxAnalysis is used for prefixing cached advisor results
	PfxAnalysis = "analysis"
	// PfxBidRecommendation is used for prefixing cached bid recommendations
	PfxBidRecommendation = "bidRecommendation"
)

// MD5 hashes the data with md5
func MD5(data string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(data)))
}

// CustomKey is used to join the customized key by components with specified delimiter
func CustomKey(delimiter string, components ...string) string {
	return strings.Join(components, delimiter)
}

// RedisKey is used to join the redis key by components
func RedisKey(components ...string) string {
	return CustomKey(":", components...)
}

// GetPrefix returns the first component of a redis key, used as a metrics tag
func GetPrefix(key string) string {
	if idx := strings.Index(key, ":"); idx >= 0 {
		return key[:idx]
	}
	return key
}
