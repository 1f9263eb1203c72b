package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown normaliser or storage type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the generation provider cannot be constructed or reached.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding provider cannot be constructed or reached.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrIndexNotBuilt indicates no manifest exists in the index directory.
	ErrIndexNotBuilt = errors.New("index not built")
)

// ErrorKind classifies failures of the answer pipeline.
type ErrorKind int

// Error kinds. Each has a matching sentinel for errors.Is.
const (
	KindCorpusBuild ErrorKind = iota + 1
	KindIndexLoad
	KindEmbeddingCall
	KindGenerationCall
	KindRetrievalInconsistency
)

// Sentinels matched by *Error through errors.Is.
var (
	// ErrCorpusBuild matches any failure chunking, embedding or persisting during a build.
	ErrCorpusBuild = errors.New("corpus build failed")

	// ErrIndexLoad matches unreadable, corrupt or mismatched index artifacts.
	ErrIndexLoad = errors.New("index load failed")

	// ErrEmbeddingCall matches failed calls to the embedding provider.
	ErrEmbeddingCall = errors.New("embedding call failed")

	// ErrGenerationCall matches failed calls to the generation provider.
	ErrGenerationCall = errors.New("generation call failed")

	// ErrRetrievalInconsistency matches a chunk store and vector index that disagree.
	// It indicates corrupted state and should trigger alerting.
	ErrRetrievalInconsistency = errors.New("retrieval inconsistency")
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindCorpusBuild:
		return "CorpusBuildError"
	case KindIndexLoad:
		return "IndexLoadError"
	case KindEmbeddingCall:
		return "EmbeddingCallError"
	case KindGenerationCall:
		return "GenerationCallError"
	case KindRetrievalInconsistency:
		return "RetrievalInconsistencyError"
	default:
		return "UnknownError"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindCorpusBuild:
		return ErrCorpusBuild
	case KindIndexLoad:
		return ErrIndexLoad
	case KindEmbeddingCall:
		return ErrEmbeddingCall
	case KindGenerationCall:
		return ErrGenerationCall
	case KindRetrievalInconsistency:
		return ErrRetrievalInconsistency
	default:
		return nil
	}
}

// Error is a typed pipeline failure.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Op names the operation that failed, e.g. "embed batch 3".
	Op string

	// Err is the underlying cause. May be nil.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.sentinel()
	text := "unknown error"
	if msg != nil {
		text = msg.Error()
	}
	if e.Op != "" {
		text += ": " + e.Op
	}
	if e.Err != nil {
		text += ": " + e.Err.Error()
	}
	return text
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// NewCorpusBuildError wraps err as a build failure.
func NewCorpusBuildError(op string, err error) error {
	return &Error{Kind: KindCorpusBuild, Op: op, Err: err}
}

// NewIndexLoadError wraps err as an index load failure.
func NewIndexLoadError(op string, err error) error {
	return &Error{Kind: KindIndexLoad, Op: op, Err: err}
}

// NewEmbeddingCallError wraps err as an embedding provider failure.
func NewEmbeddingCallError(op string, err error) error {
	return &Error{Kind: KindEmbeddingCall, Op: op, Err: err}
}

// NewGenerationCallError wraps err as a generation provider failure.
func NewGenerationCallError(op string, err error) error {
	return &Error{Kind: KindGenerationCall, Op: op, Err: err}
}

// NewRetrievalInconsistencyError reports a store/index disagreement.
func NewRetrievalInconsistencyError(chunks, vectors int) error {
	return &Error{
		Kind: KindRetrievalInconsistency,
		Op:   fmt.Sprintf("%d chunks vs %d vectors", chunks, vectors),
	}
}
