package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fencerfight/tourney/src/app/tournament"
	"github.com/fencerfight/tourney/src/domain/fighter"
	"github.com/fencerfight/tourney/src/domain/playoff"
	"github.com/fencerfight/tourney/src/domain/pool"
	"github.com/fencerfight/tourney/src/infra/sheet"
)

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cfg.Tournament.Snapshot())
}

func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	var snap tournament.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.cfg.Tournament.ApplySnapshot(snap)
	s.broadcast()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cfg.Tournament.Settings())
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings tournament.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.cfg.Tournament.UpdateSettings(settings)
	w.WriteHeader(http.StatusNoContent)
}

type AddPoolResponse struct {
	Index int `json:"index"`
}

func (s *Server) handleAddPool(w http.ResponseWriter, r *http.Request) {
	index := s.cfg.Tournament.AddPool()
	s.broadcast()
	s.writeJSON(w, http.StatusCreated, AddPoolResponse{Index: index})
}

func (s *Server) handleGetPool(w http.ResponseWriter, r *http.Request) {
	index, ok := s.poolIndex(w, r)
	if !ok {
		return
	}
	view, err := s.cfg.Tournament.PoolView(index)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeletePool(w http.ResponseWriter, r *http.Request) {
	index, ok := s.poolIndex(w, r)
	if !ok {
		return
	}
	if err := s.cfg.Tournament.DeletePool(index); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.broadcast()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectPool(w http.ResponseWriter, r *http.Request) {
	index, ok := s.poolIndex(w, r)
	if !ok {
		return
	}
	if err := s.cfg.Tournament.SelectPool(index); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type AddFighterRequest struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
}

func (s *Server) handleAddFighter(w http.ResponseWriter, r *http.Request) {
	index, ok := s.poolIndex(w, r)
	if !ok {
		return
	}
	var req AddFighterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	gender, err := parseGender(req.Gender)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	added, err := s.cfg.Tournament.AddFighter(index, req.Name, gender)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.broadcastPool(index)
	s.writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleRemoveFighter(w http.ResponseWriter, r *http.Request) {
	index, ok := s.poolIndex(w, r)
	if !ok {
		return
	}
	if err := s.cfg.Tournament.RemoveFighter(index, mux.Vars(r)["id"]); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.broadcastPool(index)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStartPool(w http.ResponseWriter, r *http.Request) {
	index, ok := s.poolIndex(w, r)
	if !ok {
		return
	}
	if err := s.cfg.Tournament.StartPool(index); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.broadcastPool(index)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectPair(w http.ResponseWriter, r *http.Request) {
	index, ok := s.poolIndex(w, r)
	if !ok {
		return
	}
	pairIdx, err := strconv.Atoi(mux.Vars(r)["pair"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.cfg.Tournament.SelectPair(index, pairIdx); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.broadcastPool(index)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEndStage(w http.ResponseWriter, r *http.Request) {
	index, ok := s.poolIndex(w, r)
	if !ok {
		return
	}
	if err := s.cfg.Tournament.EndStage(index); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.broadcastPool(index)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecordBout(w http.ResponseWriter, r *http.Request) {
	var res tournament.BoutResult
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.cfg.Tournament.RecordBout(res); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.broadcastPool(res.PoolIndex)
	w.WriteHeader(http.StatusNoContent)
}

type StartPlayoffRequest struct {
	EliminateCount int  `json:"eliminateCount"`
	PerPool        bool `json:"perPool"`
}

func (s *Server) handleStartPlayoff(w http.ResponseWriter, r *http.Request) {
	var req StartPlayoffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.cfg.Tournament.StartPlayoff(req.EliminateCount, req.PerPool); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.broadcast()
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleGetPlayoff(w http.ResponseWriter, r *http.Request) {
	bracket, err := s.cfg.Tournament.Bracket()
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, bracket)
}

type PlayoffBoutRequest struct {
	Round      int `json:"round"`
	Match      int `json:"match"`
	ScoreLeft  int `json:"scoreLeft"`
	ScoreRight int `json:"scoreRight"`
}

func (s *Server) handlePlayoffBout(w http.ResponseWriter, r *http.Request) {
	var req PlayoffBoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.cfg.Tournament.RecordPlayoffBout(req.Round, req.Match, req.ScoreLeft, req.ScoreRight); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.broadcast()
	w.WriteHeader(http.StatusNoContent)
}

type PlayoffWinnerRequest struct {
	Round int `json:"round"`
	Match int `json:"match"`
	Side  int `json:"side"`
}

func (s *Server) handlePlayoffWinner(w http.ResponseWriter, r *http.Request) {
	var req PlayoffWinnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.cfg.Tournament.SetPlayoffWinner(req.Round, req.Match, req.Side); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.broadcast()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdvancePlayoff(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Tournament.AdvancePlayoff(); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.broadcast()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePodium(w http.ResponseWriter, r *http.Request) {
	podium, err := s.cfg.Tournament.PodiumResult()
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, podium)
}

func (s *Server) handleExportPool(w http.ResponseWriter, r *http.Request) {
	index, ok := s.poolIndex(w, r)
	if !ok {
		return
	}
	view, err := s.cfg.Tournament.PoolView(index)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=pool-%d.csv", index+1))
	if err := sheet.ExportLedger(w, view.Ledger); err != nil {
		s.cfg.Logger.Error("ledger export failed", zap.Int("pool", index), zap.Error(err))
	}
}

func (s *Server) handleExportPlayoff(w http.ResponseWriter, r *http.Request) {
	bracket, err := s.cfg.Tournament.Bracket()
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=playoff.csv")
	if err := sheet.ExportBracket(w, bracket.Rounds); err != nil {
		s.cfg.Logger.Error("bracket export failed", zap.Error(err))
	}
}

func (s *Server) poolIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return 0, false
	}
	return index, true
}

// broadcast pushes the full state to every sync peer after a mutation.
func (s *Server) broadcast() {
	if err := s.cfg.Hub.SyncAll(); err != nil {
		s.cfg.Logger.Warn("state broadcast failed", zap.Error(err))
	}
}

func (s *Server) broadcastPool(index int) {
	if err := s.cfg.Hub.SyncPool(index); err != nil {
		s.cfg.Logger.Warn("pool broadcast failed", zap.Int("pool", index), zap.Error(err))
	}
}

func parseGender(v string) (fighter.Gender, error) {
	switch v {
	case "", "male":
		return fighter.Male, nil
	case "female":
		return fighter.Female, nil
	default:
		return 0, fmt.Errorf("unknown gender %q", v)
	}
}

// statusFor maps domain errors onto HTTP status codes: unknown targets are
// 404, lifecycle violations are 409, everything else is a bad request.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tournament.ErrNoSuchPool),
		errors.Is(err, tournament.ErrNoSuchPair),
		errors.Is(err, tournament.ErrNoPlayoff),
		errors.Is(err, fighter.ErrFighterNotFound),
		errors.Is(err, playoff.ErrNoSuchMatch):
		return http.StatusNotFound
	case errors.Is(err, tournament.ErrPoolProtected),
		errors.Is(err, tournament.ErrPoolsNotFinished),
		errors.Is(err, pool.ErrRoundInProgress),
		errors.Is(err, pool.ErrUnresolvedBouts),
		errors.Is(err, pool.ErrPoolEnded),
		errors.Is(err, pool.ErrNoRound),
		errors.Is(err, playoff.ErrRoundIncomplete),
		errors.Is(err, playoff.ErrBracketComplete),
		errors.Is(err, playoff.ErrBracketIncomplete):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
