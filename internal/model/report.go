package model

import (
	"fmt"
	"time"
)

// DocumentType is the closed set of report kinds the system can generate.
// Each type is persisted in its own table and rendered by its own generator.
type DocumentType string

const (
	TypeBautagesbericht DocumentType = "bautagesbericht"
	TypeRegiebericht    DocumentType = "regiebericht"
	TypeRegieantrag     DocumentType = "regieantrag"
)

// AllDocumentTypes lists the types in the fixed order used for
// cross-partition scans. The order is stable so lookups are deterministic.
var AllDocumentTypes = []DocumentType{
	TypeBautagesbericht,
	TypeRegiebericht,
	TypeRegieantrag,
}

// tableNames maps each document type to its physical table. Initialized once;
// there is no dynamic registration.
var tableNames = map[DocumentType]string{
	TypeBautagesbericht: "bautagesberichte",
	TypeRegiebericht:    "regieberichte",
	TypeRegieantrag:     "regieantraege",
}

// ParseDocumentType validates a request-supplied type string.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(s)
	if _, ok := tableNames[t]; !ok {
		return "", fmt.Errorf("unknown document type %q", s)
	}
	return t, nil
}

// TableName returns the partition table for the type. Panics on an unknown
// type; callers go through ParseDocumentType first.
func (t DocumentType) TableName() string {
	name, ok := tableNames[t]
	if !ok {
		panic(fmt.Sprintf("model: no table for document type %q", t))
	}
	return name
}

func (t DocumentType) Valid() bool {
	_, ok := tableNames[t]
	return ok
}

// Employee is one entry of the employee snapshot stored with a report.
type Employee struct {
	Name          string `json:"name"`
	Qualifikation string `json:"qualifikation"`
}

// ReportRecord is one persisted row per generated document.
//
// ReportNumber is unique within (ClientCode, DocumentType); the uniqueness
// constraint lives in the database, allocation logic alone is not trusted.
// FileName, StoragePath and FileURL stay empty on the provisional row and are
// populated only after a successful render and upload.
type ReportRecord struct {
	ID            string       `json:"id"`
	DocumentType  DocumentType `json:"documentType"`
	ClientCode    string       `json:"clientCode"`
	ClientName    string       `json:"clientName"`
	EmployeesJSON string       `json:"employeesJson"`
	ReportNumber  int          `json:"reportNumber"`
	CreatedAt     time.Time    `json:"createdAt"`
	FileName      string       `json:"fileName"`
	StoragePath   string       `json:"storagePath"`
	FileURL       string       `json:"fileUrl"`
	WorkDate      string       `json:"workDate"`
	WorkHours     string       `json:"workHours"`
	ExtraNotes    string       `json:"extraNotes"`
}

// CreateReportRequest is the POST /api/reports body. Field names follow the
// form the construction-site frontend submits.
type CreateReportRequest struct {
	DocumentType        string     `json:"documentType"`
	Kuerzel             string     `json:"kuerzel"`
	Kunde               string     `json:"kunde"`
	Strasse             string     `json:"strasse"`
	Ort                 string     `json:"ort"`
	Mitarbeiter         []Employee `json:"mitarbeiter"`
	Arbeitsdatum        string     `json:"arbeitsdatum"`
	Arbeitszeit         string     `json:"arbeitszeit"`
	ZusatzInformationen string     `json:"zusatzInformationen,omitempty"`
	IndividualDates     []string   `json:"individualDates,omitempty"`
	IndividualTimes     []string   `json:"individualTimes,omitempty"`
	Materials           []string   `json:"materials,omitempty"`
	WzData              []string   `json:"wzData,omitempty"`
	RegieTextData       []string   `json:"regieTextData,omitempty"`
	CustomReportNumber  int        `json:"customReportNumber,omitempty"`
}
