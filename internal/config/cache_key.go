package config

import (
	"fmt"
	"net/url"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamListKey returns the cache key for the list of exams
func (r *CacheKeyStruct) ExamListKey() string {
	return "catalog:exams"
}

// TopicListKey returns the cache key for the topics of an exam
func (r *CacheKeyStruct) TopicListKey(exam string) string {
	return fmt.Sprintf("catalog:exam:%s:topics", url.PathEscape(exam))
}

var CacheKey = NewCacheKeyStruct()
