package db

import (
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/denoms"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RunSummary is the outcome of one export as reported by the pipeline.
type RunSummary struct {
	TotalFetched int
	RawRecords   int
	Dropped      int
	ExportedRows int
	Complete     bool
	DataSource   string
	Branches     []providers.BranchStatus
	Err          error
}

func CreateExportRun(db *gorm.DB, chain string, address string, started time.Time) (*ExportRun, error) {
	run := ExportRun{Chain: chain, StartedAt: started.UTC()}

	err := db.Transaction(func(dbTransaction *gorm.DB) error {
		run.Address = Address{Address: address}
		if err := dbTransaction.Where(&run.Address).FirstOrCreate(&run.Address).Error; err != nil {
			return err
		}
		return dbTransaction.Create(&run).Error
	})
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// FinishExportRun stores the outcome and one row per query branch.
func FinishExportRun(db *gorm.DB, run *ExportRun, finished time.Time, summary RunSummary) error {
	finishedAt := finished.UTC()
	run.FinishedAt = &finishedAt
	run.TotalFetched = summary.TotalFetched
	run.RawRecords = summary.RawRecords
	run.Dropped = summary.Dropped
	run.ExportedRows = summary.ExportedRows
	run.Complete = summary.Complete
	run.DataSource = summary.DataSource
	if summary.Err != nil {
		run.Error = summary.Err.Error()
	}

	return db.Transaction(func(dbTransaction *gorm.DB) error {
		// a map so false and zero values are written too
		err := dbTransaction.Model(&ExportRun{}).Where("id = ?", run.ID).Updates(map[string]interface{}{
			"finished_at":   run.FinishedAt,
			"total_fetched": run.TotalFetched,
			"raw_records":   run.RawRecords,
			"dropped":       run.Dropped,
			"exported_rows": run.ExportedRows,
			"complete":      run.Complete,
			"data_source":   run.DataSource,
			"error":         run.Error,
		}).Error
		if err != nil {
			return err
		}

		run.Branches = make([]ExportBranch, 0, len(summary.Branches))
		for _, status := range summary.Branches {
			run.Branches = append(run.Branches, ExportBranch{
				ExportRunID: run.ID,
				Name:        status.Name,
				Pages:       status.Pages,
				Records:     status.Records,
				Complete:    status.Complete,
				Failed:      status.Failed,
				Error:       status.Error,
			})
		}
		if len(run.Branches) == 0 {
			return nil
		}
		return dbTransaction.Create(&run.Branches).Error
	})
}

// UpsertTokens records every token the session resolved. Later exports refresh symbol, name and decimals.
func UpsertTokens(db *gorm.DB, chain string, tokens *denoms.TokenCache) error {
	keys := tokens.Keys()
	if len(keys) == 0 {
		return nil
	}

	rows := make([]Token, 0, len(keys))
	for _, contract := range keys {
		md, ok := tokens.Get(contract)
		if !ok {
			continue
		}
		rows = append(rows, Token{Chain: chain, Contract: contract, Symbol: md.Symbol, Name: md.Name, Decimals: md.Decimals})
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chain"}, {Name: "contract"}},
		DoUpdates: clause.AssignmentColumns([]string{"symbol", "name", "decimals"}),
	}).Create(&rows).Error
}

// RecordExport writes a finished export in one go. Tokens may be nil.
func RecordExport(db *gorm.DB, chain string, address string, started time.Time, finished time.Time, summary RunSummary, tokens *denoms.TokenCache) (*ExportRun, error) {
	run, err := CreateExportRun(db, chain, address, started)
	if err != nil {
		return nil, err
	}
	if err := FinishExportRun(db, run, finished, summary); err != nil {
		return run, err
	}
	if tokens != nil {
		if err := UpsertTokens(db, chain, tokens); err != nil {
			return run, err
		}
	}
	return run, nil
}

// GetExportRuns lists the newest runs for an address, optionally restricted to one chain.
func GetExportRuns(db *gorm.DB, address string, chain string, limit int) ([]ExportRun, error) {
	var runs []ExportRun

	query := db.Preload("Address").Preload("Branches").
		Where("address_id IN (?)", db.Model(&Address{}).Select("id").Where("address = ?", address))
	if chain != "" {
		query = query.Where("chain = ?", chain)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	result := query.Order("started_at desc").Order("id desc").Find(&runs)
	return runs, result.Error
}

func GetTokens(db *gorm.DB, chain string) ([]Token, error) {
	var tokens []Token
	result := db.Where("chain = ?", chain).Order("contract").Find(&tokens)
	return tokens, result.Error
}
