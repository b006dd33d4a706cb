package worker

import (
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"

	"school-ledger/internal/repository"
	"school-ledger/internal/utils"
)

func RegisterHandlers(mux *asynq.ServeMux, db *sqlx.DB) {
	accountRepo := repository.NewAccountRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	verifier := NewVerifyHandler(accountRepo, ledgerRepo, utils.GetLogger())
	mux.HandleFunc(TaskVerifyBalances, verifier.Handle)
}
