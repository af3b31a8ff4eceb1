package refdata

import (
	"encoding/csv"
	"fmt"
	"os"

	"baureport/internal/model"
)

// Package refdata reads the flat-file registries maintained by the office:
// the client/site list and the employee list. Both are loaded once at startup
// and served read-only to the frontend.

// Client is one row of the client/site registry.
type Client struct {
	Kuerzel string `json:"kuerzel"`
	Name    string `json:"name"`
	Strasse string `json:"strasse"`
	Ort     string `json:"ort"`
}

// LoadClients reads the client registry CSV. Expected columns:
// kuerzel;name;strasse;ort with a header row.
func LoadClients(path string) ([]Client, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	clients := make([]Client, 0, len(rows))
	for i, row := range rows {
		if len(row) < 4 {
			return nil, fmt.Errorf("%s: row %d has %d columns, want 4", path, i+2, len(row))
		}
		clients = append(clients, Client{
			Kuerzel: row[0],
			Name:    row[1],
			Strasse: row[2],
			Ort:     row[3],
		})
	}
	return clients, nil
}

// LoadEmployees reads the employee registry CSV. Expected columns:
// name;qualifikation with a header row.
func LoadEmployees(path string) ([]model.Employee, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	employees := make([]model.Employee, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("%s: row %d has %d columns, want 2", path, i+2, len(row))
		}
		employees = append(employees, model.Employee{
			Name:          row[0],
			Qualifikation: row[1],
		})
	}
	return employees, nil
}

// readCSV returns all data rows of a semicolon-separated file, header
// stripped.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}
