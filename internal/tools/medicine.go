package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jvbaena/cradle/internal/query"
	"github.com/jvbaena/cradle/internal/store"
)

// MedicineTools handles the medicine tools. Dose events hang off a
// medicine, so querying by child joins through the medicine table.
type MedicineTools struct {
	store *store.Store
}

// NewMedicineTools creates a MedicineTools handler.
func NewMedicineTools(s *store.Store) *MedicineTools {
	return &MedicineTools{store: s}
}

// Definitions returns the medicine tool schemas.
func (t *MedicineTools) Definitions() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("create-medicine",
			mcp.WithDescription("Register a medicine for a child."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Medicine name")),
			mcp.WithString("dosage", mcp.Description("Standard dosage, e.g. '2.5ml'")),
			mcp.WithString("frequency", mcp.Description("Dosing frequency, e.g. 'every 6 hours'")),
		),
		mcp.NewTool("get-medicines",
			mcp.WithDescription("List a child's medicines."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithBoolean("activeOnly", mcp.Description("Only list active medicines (default false)")),
		),
		mcp.NewTool("log-medicine",
			mcp.WithDescription("Record a dose given (or skipped) for a medicine."),
			mcp.WithString("medicineId", mcp.Required(), mcp.Description("Medicine identifier")),
			mcp.WithString("time", mcp.Description("Dose time, RFC 3339 (default: now)")),
			mcp.WithString("dosageGiven", mcp.Description("Dosage actually given (default: the medicine's standard dosage)")),
			mcp.WithBoolean("skipped", mcp.Description("Record the dose as skipped (default false)")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		queryTool("query-medicine-records",
			"Query dose records for a child across all medicines, with date range, pagination and optional page-scoped summary.",
			mcp.WithBoolean("includeSkipped", mcp.Description("Include skipped doses (default true)")),
		),
	}
}

// Handle dispatches a medicine tool call by name.
func (t *MedicineTools) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch req.Params.Name {
	case "create-medicine":
		return t.create(ctx, req)
	case "get-medicines":
		return t.list(ctx, req)
	case "log-medicine":
		return t.log(ctx, req)
	case "query-medicine-records":
		return t.query(ctx, req)
	default:
		return unknownTool("medicine", req.Params.Name), nil
	}
}

type medicineCreateResult struct {
	Success    bool            `json:"success"`
	MedicineID string          `json:"medicineId"`
	Medicine   *store.Medicine `json:"medicine"`
}

func (t *MedicineTools) create(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	name := req.GetString("name", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	m, err := t.store.CreateMedicine(ctx, childID, name, req.GetString("dosage", ""), req.GetString("frequency", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create medicine: %v", err)), nil
	}

	return jsonResult(medicineCreateResult{Success: true, MedicineID: m.ID, Medicine: m}), nil
}

type medicineListResult struct {
	ChildID   string           `json:"childId"`
	Medicines []store.Medicine `json:"medicines"`
}

func (t *MedicineTools) list(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}

	medicines, err := t.store.ListMedicines(ctx, childID, boolArg(req, "activeOnly", false))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list medicines: %v", err)), nil
	}
	if medicines == nil {
		medicines = []store.Medicine{}
	}
	return jsonResult(medicineListResult{ChildID: childID, Medicines: medicines}), nil
}

type medicineRecordView struct {
	ID           string  `json:"id"`
	MedicineID   string  `json:"medicineId"`
	MedicineName string  `json:"medicineName"`
	Time         string  `json:"time"`
	DosageGiven  *string `json:"dosageGiven,omitempty"`
	Skipped      bool    `json:"skipped"`
	Notes        *string `json:"notes,omitempty"`
}

func medicineRecordViewOf(r store.MedicineRecord) medicineRecordView {
	return medicineRecordView{
		ID:           r.ID,
		MedicineID:   r.MedicineID,
		MedicineName: r.MedicineName,
		Time:         r.GivenAt.UTC().Format(time.RFC3339),
		DosageGiven:  r.DosageGiven,
		Skipped:      r.Skipped,
		Notes:        r.Notes,
	}
}

type medicineLogResult struct {
	Success  bool   `json:"success"`
	RecordID string `json:"recordId"`
	medicineRecordView
}

func (t *MedicineTools) log(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	medicineID := req.GetString("medicineId", "")
	if medicineID == "" {
		return mcp.NewToolResultError("'medicineId' is required"), nil
	}

	medicine, err := t.store.GetMedicine(ctx, medicineID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load medicine: %v", err)), nil
	}
	if medicine == nil {
		return mcp.NewToolResultError("Medicine not found."), nil
	}

	dosageGiven := req.GetString("dosageGiven", "")
	if dosageGiven == "" && medicine.Dosage != nil {
		dosageGiven = *medicine.Dosage
	}

	rec, err := t.store.CreateMedicineRecord(ctx, medicineID,
		timeArg(req, "time", now()), dosageGiven, boolArg(req, "skipped", false), req.GetString("notes", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log medicine dose: %v", err)), nil
	}

	return jsonResult(medicineLogResult{
		Success:            true,
		RecordID:           rec.ID,
		medicineRecordView: medicineRecordViewOf(*rec),
	}), nil
}

type medicineSummary struct {
	TotalDoses   int            `json:"totalDoses"`
	GivenCount   int            `json:"givenCount"`
	SkippedCount int            `json:"skippedCount"`
	ByMedicine   map[string]int `json:"byMedicine"`
}

func summarizeMedicineRecords(records []store.MedicineRecord) medicineSummary {
	s := medicineSummary{TotalDoses: len(records), ByMedicine: map[string]int{}}
	for _, r := range records {
		if r.Skipped {
			s.SkippedCount++
		} else {
			s.GivenCount++
		}
		s.ByMedicine[r.MedicineName]++
	}
	return s
}

func (t *MedicineTools) query(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseQueryArgs(req)
	if errResult != nil {
		return errResult, nil
	}

	filter := store.MedicineRecordFilter{
		ChildID:        args.ChildID,
		Since:          args.Range.Start,
		Until:          args.Range.End,
		Limit:          args.Limit,
		Offset:         args.Offset,
		Ascending:      args.Ascending,
		ExcludeSkipped: !boolArg(req, "includeSkipped", true),
	}

	records, err := t.store.ListMedicineRecords(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to query medicine records: %v", err)), nil
	}
	total, err := t.store.CountMedicineRecords(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to count medicine records: %v", err)), nil
	}

	views := make([]medicineRecordView, 0, len(records))
	for _, r := range records {
		views = append(views, medicineRecordViewOf(r))
	}

	resp := query.NewResponse(views, total, args.Limit, args.Offset, args.Range)
	if args.IncludeSummary {
		resp.Summary = summarizeMedicineRecords(records)
	}
	return jsonResult(resp), nil
}
