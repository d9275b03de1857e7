// Package repomanager wires the governance store repositories to a concrete
// database backend and runs migrations at startup.
package repomanager

import (
	"database/sql"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/proposals"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/users"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/votes"
)

type RepositoryManager interface {
	Conn() *sql.DB
	Users() users.Repository
	Proposals() proposals.Repository
	Votes() votes.Repository
	Close() error
}
