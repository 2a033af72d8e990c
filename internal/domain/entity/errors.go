package entity

import "errors"

var (
	ErrImageFetch           = errors.New("image fetch failed")
	ErrImageDecode          = errors.New("image decode failed")
	ErrModelNotLoaded       = errors.New("classifier model is not loaded")
	ErrInferenceTimeout     = errors.New("classifier inference timed out")
	ErrInvalidProbabilities = errors.New("classifier returned an invalid probability vector")
	ErrDescriberDisabled    = errors.New("description generation is not configured")
	ErrDescriberUpstream    = errors.New("description generation failed")
)

// IsInputError reports whether err was caused by the caller's image rather than the deployment.
func IsInputError(err error) bool {
	return errors.Is(err, ErrImageFetch) || errors.Is(err, ErrImageDecode)
}
