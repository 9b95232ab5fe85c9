package handler

import "errors"

var errNotInitialized = errors.New("client is not initialized")
