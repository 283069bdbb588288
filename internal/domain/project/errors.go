package project

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectIDExists = errors.New("project id already exists")
)
