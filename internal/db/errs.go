package db

import "errors"

// store errs.
var (
	ErrDBNotFound   = errors.New("database not found")
	ErrDBCorrupted  = errors.New("database failed integrity check")
	ErrBackupExists = errors.New("backup already exists")
)

// row errs.
var (
	ErrRecordDuplicate     = errors.New("url already stored")
	ErrRecordIDNotProvided = errors.New("record id not provided")
	ErrRecordNotFound      = errors.New("record not found")
	ErrRecordScan          = errors.New("scanning row")
)
