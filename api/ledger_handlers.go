package api

import (
	"math/big"
	"net/http"

	"github.com/Aidin1998/ethtransfer/common/apiutil"
	"github.com/Aidin1998/ethtransfer/internal/ledger"
	"github.com/Aidin1998/ethtransfer/pkg/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type accountsResponse struct {
	Accounts []ledger.Account `json:"accounts"`
}

// transferRequest takes the amount either in ether (Amount) or in wei (Wei)
type transferRequest struct {
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required_without=Wei,excluded_with=Wei"`
	Wei    string `json:"wei" binding:"omitempty,numeric"`
}

type transferResponse struct {
	Hash  string `json:"hash"`
	From  string `json:"from"`
	To    string `json:"to"`
	Wei   string `json:"wei"`
	Ether string `json:"ether"`
}

func (s *Server) listAccounts(c *gin.Context) {
	accounts, err := s.wallet.ListAccounts(c.Request.Context())
	if err != nil {
		s.writeLedgerError(c, err)
		return
	}
	if accounts == nil {
		accounts = []ledger.Account{}
	}
	c.JSON(http.StatusOK, accountsResponse{Accounts: accounts})
}

func (s *Server) getBalance(c *gin.Context) {
	bal, err := s.wallet.GetBalance(c.Request.Context(), ledger.Account(c.Param("account")))
	if err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, bal)
}

func (s *Server) createTransfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.WriteProblem(c, errors.NewValidationError(err.Error(), ""))
		return
	}

	var amount *big.Int
	if req.Wei != "" {
		v, ok := new(big.Int).SetString(req.Wei, 10)
		if !ok {
			apiutil.WriteProblem(c, errors.NewValidationError("wei must be an integer", ""))
			return
		}
		amount = v
	} else {
		v, err := ledger.ToBaseUnit(req.Amount)
		if err != nil {
			s.writeLedgerError(c, err)
			return
		}
		amount = v
	}

	result, err := s.wallet.Transfer(c.Request.Context(), ledger.TransferRequest{
		From:   ledger.Account(req.From),
		To:     ledger.Account(req.To),
		Amount: amount,
	})
	if err != nil {
		s.writeLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transferResponse{
		Hash:  result.Hash,
		From:  result.From.String(),
		To:    result.To.String(),
		Wei:   result.Amount.String(),
		Ether: ledger.ToDisplayUnit(result.Amount),
	})
}

func (s *Server) writeLedgerError(c *gin.Context, err error) {
	problem := problemFor(err)
	if problem.Status >= http.StatusInternalServerError {
		s.logger.Error("Ledger call failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	apiutil.WriteProblem(c, problem)
}

// problemFor maps ledger error kinds to HTTP problems
func problemFor(err error) *errors.ProblemDetails {
	detail := err.Error()
	switch {
	case errors.Is(err, ledger.ErrInvalidRequest):
		return errors.NewValidationError(detail, "")
	case errors.Is(err, ledger.ErrInvalidAccount):
		return errors.NewProblemDetails(errors.TypeInvalidAccount, "Invalid Account", http.StatusNotFound, detail, "")
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return errors.NewProblemDetails(errors.TypeInsufficientFunds, "Insufficient Funds", http.StatusUnprocessableEntity, detail, "")
	case errors.Is(err, ledger.ErrRejected):
		return errors.NewProblemDetails(errors.TypeTransferRejected, "Rejected By Ledger", http.StatusConflict, detail, "")
	case errors.Is(err, ledger.ErrConnection):
		return errors.NewProblemDetails(errors.TypeLedgerUnavailable, "Ledger Unavailable", http.StatusBadGateway, detail, "")
	case errors.Is(err, ledger.ErrInvalidResponse):
		return errors.NewProblemDetails(errors.TypeInvalidLedgerAnswer, "Invalid Ledger Response", http.StatusBadGateway, detail, "")
	default:
		return errors.NewInternalError("An unexpected error occurred", "")
	}
}
