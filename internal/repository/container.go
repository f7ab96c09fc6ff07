package repository

import (
	"gorm.io/gorm"
)

type Repos struct {
	Repository RepositoryRepo
	Image      ImageRepo
	Error      ErrorRepo
	Scan       ScanRepo

	db *gorm.DB
}

func NewRepositories(db *gorm.DB) *Repos {
	return &Repos{
		Repository: NewRepositoryRepo(db),
		Image:      NewImageRepo(db),
		Error:      NewErrorRepo(db),
		Scan:       NewScanRepo(db),
		db:         db,
	}
}

func (r *Repos) WithTx(tx *gorm.DB) *Repos {
	return &Repos{
		Repository: r.Repository.WithTx(tx),
		Image:      r.Image.WithTx(tx),
		Error:      r.Error.WithTx(tx),
		Scan:       r.Scan.WithTx(tx),
		db:         tx,
	}
}

func (r *Repos) ExecTx(fn func(*Repos) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepos := r.WithTx(tx)
		return fn(txRepos)
	})
}
