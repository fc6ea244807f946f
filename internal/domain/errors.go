package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidCategory is returned for a quiz category outside the known set
	ErrInvalidCategory = errors.New("unknown quiz category")

	// ErrInvalidAnswer is returned when an answer letter is not one of A-D
	ErrInvalidAnswer = errors.New("answer must be one of A, B, C or D")

	// ErrQuestionNotFound is returned when a question ID does not exist
	ErrQuestionNotFound = errors.New("question not found")

	// ErrResultNotFound is returned when no quiz result carries the share ID
	ErrResultNotFound = errors.New("quiz result not found")

	// ErrUnauthorized is returned for bad admin credentials or tokens
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrUpstreamFailure is returned when the language model or speech API fails
	ErrUpstreamFailure = errors.New("upstream request failed")

	// ErrServiceUnavailable is returned when a feature has no backing provider configured
	ErrServiceUnavailable = errors.New("service unavailable")
)
