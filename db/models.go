package db

import "time"

type Address struct {
	ID      uint
	Address string `gorm:"uniqueIndex"`
}

// ExportRun is the audit record of one wallet export.
type ExportRun struct {
	ID           uint
	Chain        string `gorm:"index"`
	AddressID    uint
	Address      Address
	StartedAt    time.Time
	FinishedAt   *time.Time
	TotalFetched int
	RawRecords   int
	Dropped      int
	ExportedRows int
	Complete     bool
	DataSource   string
	Error        string
	Branches     []ExportBranch
}

type ExportBranch struct {
	ID          uint
	ExportRunID uint
	Name        string
	Pages       int
	Records     int
	Complete    bool
	Failed      bool
	Error       string
}

// Token is token metadata observed during exports, one row per chain and contract.
type Token struct {
	ID       uint
	Chain    string `gorm:"uniqueIndex:idx_token_chain_contract"`
	Contract string `gorm:"uniqueIndex:idx_token_chain_contract"`
	Symbol   string
	Name     string
	Decimals int
}
