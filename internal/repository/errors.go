// Package repository implements the service repository contracts on top
// of MySQL.  Driver errors are translated into the sentinels of the model
// package so handlers can map them to HTTP status codes.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/metro-ticketing/internal/model"
)

// MySQL error number for a duplicate unique key.
const errDupEntry = 1062

// translate maps sql.ErrNoRows to model.ErrNotFound and duplicate key
// violations to model.ErrConflict.  Other errors pass through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		return model.ErrConflict
	}
	return err
}

// mustAffect turns a zero-row update into model.ErrNotFound.
func mustAffect(res sql.Result, err error) error {
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func insertID(res sql.Result, err error) (uint64, error) {
	if err != nil {
		return 0, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
