package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oculab/microbio-portal/internal/core/domain"
	"github.com/oculab/microbio-portal/internal/core/ports"
)

const collectionCases = "cases"

type CaseRepository struct {
	col *mongo.Collection
}

func NewCaseRepository(db *mongo.Database) *CaseRepository {
	return &CaseRepository{col: db.Collection(collectionCases)}
}

type mongoCase struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	CaseNumber       string             `bson:"case_number"`
	DoctorID         string             `bson:"doctor_id"`
	DoctorName       string             `bson:"doctor_name"`
	CentreName       string             `bson:"centre_name"`
	PatientRef       string             `bson:"patient_ref"`
	Eye              string             `bson:"eye"`
	Sample           string             `bson:"sample"`
	DurationValue    int                `bson:"duration_value"`
	DurationUnit     string             `bson:"duration_unit"`
	OnMedication     bool               `bson:"on_medication"`
	MedsCategory     string             `bson:"meds_category,omitempty"`
	MedsCustom       string             `bson:"meds_custom,omitempty"`
	Impression       string             `bson:"impression"`
	Stains           []string           `bson:"stains"`
	ImageFile        string             `bson:"image_file"`
	Status           string             `bson:"status"`
	AssignmentStatus string             `bson:"assignment_status"`
	AssignedToID     string             `bson:"assigned_to_id,omitempty"`
	AssignedToName   string             `bson:"assigned_to_name,omitempty"`
	SubmittedAt      time.Time          `bson:"submitted_at"`
	AssignedAt       *time.Time         `bson:"assigned_at,omitempty"`
	Report           *mongoReport       `bson:"report,omitempty"`
	IdempotencyKey   string             `bson:"idempotency_key,omitempty"`
}

type mongoReport struct {
	RCCode            string     `bson:"rc_code"`
	LabID             string     `bson:"lab_id"`
	Quality           string     `bson:"quality"`
	SampleSuitable    bool       `bson:"sample_suitable"`
	SuitabilityReason string     `bson:"suitability_reason,omitempty"`
	Findings          string     `bson:"findings"`
	Comments          string     `bson:"comments,omitempty"`
	AuthorizedBy      string     `bson:"authorized_by"`
	PDFFile           string     `bson:"pdf_file,omitempty"`
	PDFUploadedAt     *time.Time `bson:"pdf_uploaded_at,omitempty"`
	CreatedAt         time.Time  `bson:"created_at"`
}

func toMongoReport(r *domain.Report) *mongoReport {
	if r == nil {
		return nil
	}
	return &mongoReport{
		RCCode:            r.RCCode,
		LabID:             r.LabID,
		Quality:           string(r.Quality),
		SampleSuitable:    r.SampleSuitable,
		SuitabilityReason: r.SuitabilityReason,
		Findings:          r.Findings,
		Comments:          r.Comments,
		AuthorizedBy:      r.AuthorizedBy,
		PDFFile:           r.PDFFile,
		PDFUploadedAt:     r.PDFUploadedAt,
		CreatedAt:         r.CreatedAt.UTC(),
	}
}

func fromMongoReport(r *mongoReport) *domain.Report {
	if r == nil {
		return nil
	}
	return &domain.Report{
		RCCode:            r.RCCode,
		LabID:             r.LabID,
		Quality:           domain.Quality(r.Quality),
		SampleSuitable:    r.SampleSuitable,
		SuitabilityReason: r.SuitabilityReason,
		Findings:          r.Findings,
		Comments:          r.Comments,
		AuthorizedBy:      r.AuthorizedBy,
		PDFFile:           r.PDFFile,
		PDFUploadedAt:     r.PDFUploadedAt,
		CreatedAt:         r.CreatedAt,
	}
}

func toMongoCase(c *domain.Case) mongoCase {
	return mongoCase{
		CaseNumber:       c.CaseNumber,
		DoctorID:         c.DoctorID,
		DoctorName:       c.DoctorName,
		CentreName:       c.CentreName,
		PatientRef:       c.PatientRef,
		Eye:              string(c.Eye),
		Sample:           string(c.Sample),
		DurationValue:    c.DurationValue,
		DurationUnit:     string(c.DurationUnit),
		OnMedication:     c.OnMedication,
		MedsCategory:     string(c.MedsCategory),
		MedsCustom:       c.MedsCustom,
		Impression:       string(c.Impression),
		Stains:           c.Stains,
		ImageFile:        c.ImageFile,
		Status:           string(c.Status),
		AssignmentStatus: string(c.AssignmentStatus),
		AssignedToID:     c.AssignedToID,
		AssignedToName:   c.AssignedToName,
		SubmittedAt:      c.SubmittedAt.UTC(),
		AssignedAt:       c.AssignedAt,
		Report:           toMongoReport(c.Report),
		IdempotencyKey:   c.IdempotencyKey,
	}
}

func fromMongoCase(mc mongoCase) *domain.Case {
	return &domain.Case{
		ID:               mc.ID.Hex(),
		CaseNumber:       mc.CaseNumber,
		DoctorID:         mc.DoctorID,
		DoctorName:       mc.DoctorName,
		CentreName:       mc.CentreName,
		PatientRef:       mc.PatientRef,
		Eye:              domain.Eye(mc.Eye),
		Sample:           domain.SampleType(mc.Sample),
		DurationValue:    mc.DurationValue,
		DurationUnit:     domain.DurationUnit(mc.DurationUnit),
		OnMedication:     mc.OnMedication,
		MedsCategory:     domain.MedsCategory(mc.MedsCategory),
		MedsCustom:       mc.MedsCustom,
		Impression:       domain.Impression(mc.Impression),
		Stains:           mc.Stains,
		ImageFile:        mc.ImageFile,
		Status:           domain.CaseStatus(mc.Status),
		AssignmentStatus: domain.AssignmentStatus(mc.AssignmentStatus),
		AssignedToID:     mc.AssignedToID,
		AssignedToName:   mc.AssignedToName,
		SubmittedAt:      mc.SubmittedAt,
		AssignedAt:       mc.AssignedAt,
		Report:           fromMongoReport(mc.Report),
		IdempotencyKey:   mc.IdempotencyKey,
	}
}

// Create inserts a new case document and records the generated ID on c. A
// unique-index collision (a concurrent submit carrying the same idempotency
// key, or a case-number clash) comes back as ErrDuplicateSubmission.
func (r *CaseRepository) Create(ctx context.Context, c *domain.Case) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toMongoCase(c))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateSubmission
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid.Hex()
	}
	return nil
}

func (r *CaseRepository) FindByID(ctx context.Context, id string) (*domain.Case, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCaseNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoCase
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, err
	}
	return fromMongoCase(mc), nil
}

// FindByIdempotencyKey retrieves the case a doctor previously created with
// the given key.
func (r *CaseRepository) FindByIdempotencyKey(ctx context.Context, doctorID, key string) (*domain.Case, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoCase
	err := r.col.FindOne(ctx, bson.M{"doctor_id": doctorID, "idempotency_key": key}).Decode(&mc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, err
	}
	return fromMongoCase(mc), nil
}

// List returns a page of cases matching the filter plus the total match count.
func (r *CaseRepository) List(ctx context.Context, f ports.ListCasesFilter) ([]*domain.Case, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.DoctorID != "" {
		filter["doctor_id"] = f.DoctorID
	}
	if f.AssignedToID != "" {
		filter["assigned_to_id"] = f.AssignedToID
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.AssignmentStatus != "" {
		filter["assignment_status"] = string(f.AssignmentStatus)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	order := -1
	if f.OldestFirst {
		order = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: order}, {Key: "_id", Value: order}})
	if f.Page > 0 && f.Limit > 0 {
		opts.SetSkip(int64((f.Page - 1) * f.Limit)).SetLimit(int64(f.Limit))
	}

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []mongoCase
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	cases := make([]*domain.Case, len(docs))
	for i, mc := range docs {
		cases[i] = fromMongoCase(mc)
	}
	return cases, total, nil
}

// Claim assigns the case to the technician iff it is still pending and
// unassigned. The precondition lives in the filter so the check and the
// write are one atomic operation.
func (r *CaseRepository) Claim(ctx context.Context, caseID, techID, techName string, at time.Time) (*domain.Case, error) {
	oid, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		return nil, domain.ErrCaseNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":               oid,
		"status":            string(domain.CaseStatusPending),
		"assignment_status": string(domain.AssignmentUnassigned),
	}
	update := bson.M{"$set": bson.M{
		"assignment_status": string(domain.AssignmentAssigned),
		"assigned_to_id":    techID,
		"assigned_to_name":  techName,
		"assigned_at":       at.UTC(),
	}}

	return r.findOneAndUpdate(ctx, filter, update)
}

// Complete attaches the report and moves both statuses to completed in a
// single write, iff the case is still pending.
func (r *CaseRepository) Complete(ctx context.Context, caseID string, report *domain.Report) (*domain.Case, error) {
	oid, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		return nil, domain.ErrCaseNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":    oid,
		"status": string(domain.CaseStatusPending),
	}
	update := bson.M{"$set": bson.M{
		"status":            string(domain.CaseStatusCompleted),
		"assignment_status": string(domain.AssignmentCompleted),
		"report":            toMongoReport(report),
	}}

	return r.findOneAndUpdate(ctx, filter, update)
}

// AttachReportPDF sets the report PDF fields iff the case is completed and
// carries a report with no PDF yet.
func (r *CaseRepository) AttachReportPDF(ctx context.Context, caseID, pdfFile string, at time.Time) (*domain.Case, error) {
	oid, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		return nil, domain.ErrCaseNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":             oid,
		"status":          string(domain.CaseStatusCompleted),
		"report":          bson.M{"$exists": true},
		"report.pdf_file": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{
		"report.pdf_file":        pdfFile,
		"report.pdf_uploaded_at": at.UTC(),
	}}

	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *CaseRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Case, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mc mongoCase
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, err
	}
	return fromMongoCase(mc), nil
}

// PendingCountsByTechnician returns the pending-case count per technician ID.
func (r *CaseRepository) PendingCountsByTechnician(ctx context.Context, techIDs []string) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"assigned_to_id": bson.M{"$in": techIDs},
			"status":         string(domain.CaseStatusPending),
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$assigned_to_id",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TechID string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.TechID] = row.Count
	}
	return counts, nil
}

func (r *CaseRepository) CountByDoctor(ctx context.Context, doctorID string, status domain.CaseStatus) (int64, error) {
	return r.count(ctx, bson.M{"doctor_id": doctorID}, status)
}

func (r *CaseRepository) CountByTechnician(ctx context.Context, techID string, status domain.CaseStatus) (int64, error) {
	return r.count(ctx, bson.M{"assigned_to_id": techID}, status)
}

func (r *CaseRepository) count(ctx context.Context, filter bson.M, status domain.CaseStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if status != "" {
		filter["status"] = string(status)
	}
	return r.col.CountDocuments(ctx, filter)
}

// EnsureIndexes creates necessary indexes on the cases collection.
func (r *CaseRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "case_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "submitted_at", Value: -1}}},
		{Keys: bson.D{{Key: "assigned_to_id", Value: 1}, {Key: "status", Value: 1}}},
		{
			Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "idempotency_key", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}}),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
