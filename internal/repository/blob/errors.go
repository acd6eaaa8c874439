package blob

import "errors"

var ErrStorageUnavailable = errors.New("blob storage unavailable")
