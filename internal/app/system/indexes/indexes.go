// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureStudents(ctx, db); err != nil {
		problems = append(problems, "students: "+err.Error())
	}
	if err := ensureForms(ctx, db); err != nil {
		problems = append(problems, "project_forms: "+err.Error())
	}
	if err := ensureRegistrationStatus(ctx, db); err != nil {
		problems = append(problems, "registration_status: "+err.Error())
	}
	if err := ensureGroupRegistrations(ctx, db); err != nil {
		problems = append(problems, "group_registrations: "+err.Error())
	}
	if err := ensureFormRegistrations(ctx, db); err != nil {
		problems = append(problems, "form_registrations: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: ensure a set of desired indexes for one collection            */
/* -------------------------------------------------------------------------- */

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with
// the same keys already exists under a different name.
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var unique bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				unique = *m.Options.Unique
			}
		}
		desiredSig := keySig(m.Keys.(bson.D))

		start := time.Now()
		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			if isOptionsConflictErr(err) {
				// Same keys already indexed under another name; reuse it.
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("keys", desiredSig))
				continue
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			continue
		}

		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", created),
			zap.String("keys", desiredSig),
			zap.Bool("unique", unique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                             */
/* -------------------------------------------------------------------------- */

func ensureStudents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("students")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Student IDs are globally unique (normalized uppercase before insert).
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_students_studentid"),
		},
		// Year listings (ledger seeding reads every student of a year).
		{
			Keys:    bson.D{{Key: "year", Value: 1}, {Key: "student_id", Value: 1}},
			Options: options.Index().SetName("idx_students_year_studentid"),
		},
	})
}

func ensureForms(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("project_forms")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// No duplicate form names (case/diacritics-folded via name_ci).
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_forms_nameci"),
		},
		// Year + active listings (students see active forms for their year).
		{
			Keys:    bson.D{{Key: "year", Value: 1}, {Key: "is_active", Value: 1}},
			Options: options.Index().SetName("idx_forms_year_active"),
		},
		// Deactivation sweep: active forms past their end date.
		{
			Keys:    bson.D{{Key: "is_active", Value: 1}, {Key: "end_date", Value: 1}},
			Options: options.Index().SetName("idx_forms_active_enddate"),
		},
	})
}

func ensureRegistrationStatus(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("registration_status")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Exactly one ledger per form.
		{
			Keys:    bson.D{{Key: "form_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_regstatus_form"),
		},
	})
}

func ensureGroupRegistrations(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("group_registrations")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Per-form listings, newest first.
		{
			Keys:    bson.D{{Key: "form_id", Value: 1}, {Key: "registered_at", Value: -1}},
			Options: options.Index().SetName("idx_groupreg_form_registered"),
		},
		// Receipt lookup.
		{
			Keys:    bson.D{{Key: "receipt_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_groupreg_receipt"),
		},
	})
}

func ensureFormRegistrations(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("form_registrations")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One derived index document per form.
		{
			Keys:    bson.D{{Key: "form_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_formreg_form"),
		},
	})
}
