package services

import "errors"

// ErrNoDataset is returned when the service was built without data
var ErrNoDataset = errors.New("dataset not loaded")
