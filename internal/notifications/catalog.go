// Package notifications holds the fixed catalog of operation codes that can
// trigger an email notification.
package notifications

import (
	"sort"

	"github.com/sjperalta/registro-api/internal/models"
)

// Operation codes
const (
	CodeContractNearExpiry = "CONTRATTO_IN_SCADENZA"
	CodeContractExpired    = "CONTRATTO_SCADUTO"
	CodeContractRenewed    = "CONTRATTO_RINNOVATO"
	CodeContractDeleted    = "CONTRATTO_ELIMINATO"
	CodeTenderPublished    = "GARA_PUBBLICATA"
	CodeTenderAwarded      = "GARA_AGGIUDICATA"
	CodeVehicleAssigned    = "VEICOLO_ASSEGNATO"
	CodeVehicleReturned    = "VEICOLO_RESTITUITO"
	CodeDocumentUploaded   = "DOCUMENTO_CARICATO"
	CodeUserCreated        = "UTENTE_CREATO"
	CodeBatchDigest        = "RIEPILOGO_BATCH"
)

// Owning modules
const (
	ModuleContracts = "contratti"
	ModuleTenders   = "gare"
	ModuleFleet     = "flotta"
	ModuleDocuments = "documenti"
	ModuleUsers     = "utenti"
	ModuleSystem    = "sistema"
)

// FallbackSubject is used for codes missing from the catalog
const FallbackSubject = "Notifica dal Registro"

// Entry describes one operation code
type Entry struct {
	Code           string `json:"code"`
	Description    string `json:"description"`
	Module         string `json:"module"`
	DefaultSubject string `json:"default_subject"`
}

var entries = []Entry{
	{CodeContractNearExpiry, "Contratto in prossimità di scadenza", ModuleContracts, "Contratto in scadenza"},
	{CodeContractExpired, "Contratto scaduto", ModuleContracts, "Contratto scaduto"},
	{CodeContractRenewed, "Contratto rinnovato automaticamente", ModuleContracts, "Contratto rinnovato"},
	{CodeContractDeleted, "Contratto eliminato dal registro", ModuleContracts, "Contratto eliminato"},
	{CodeTenderPublished, "Nuova gara pubblicata", ModuleTenders, "Nuova gara pubblicata"},
	{CodeTenderAwarded, "Gara aggiudicata", ModuleTenders, "Gara aggiudicata"},
	{CodeVehicleAssigned, "Veicolo assegnato a un dipendente", ModuleFleet, "Assegnazione veicolo"},
	{CodeVehicleReturned, "Veicolo restituito", ModuleFleet, "Restituzione veicolo"},
	{CodeDocumentUploaded, "Nuovo documento caricato", ModuleDocuments, "Nuovo documento disponibile"},
	{CodeUserCreated, "Nuovo utente registrato", ModuleUsers, "Benvenuto nel Registro"},
	{CodeBatchDigest, "Riepilogo delle elaborazioni pianificate", ModuleSystem, "Riepilogo elaborazione contratti"},
}

var catalog = func() map[string]Entry {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.Code] = e
	}
	return m
}()

// Entries returns every catalog entry ordered by module and code
func Entries() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Lookup returns the entry for code
func Lookup(code string) (Entry, bool) {
	e, ok := catalog[code]
	return e, ok
}

// ResolveDefaultSubject returns the default subject for code, or
// FallbackSubject when the code is unknown.
func ResolveDefaultSubject(code string) string {
	if e, ok := catalog[code]; ok {
		return e.DefaultSubject
	}
	return FallbackSubject
}

// StatusCode maps a contract status reached by a lifecycle job to its
// operation code
func StatusCode(status string) (string, bool) {
	switch status {
	case models.ContractStatusNearExpiry:
		return CodeContractNearExpiry, true
	case models.ContractStatusExpired:
		return CodeContractExpired, true
	case models.ContractStatusRenewed:
		return CodeContractRenewed, true
	default:
		return "", false
	}
}
