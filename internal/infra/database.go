package infra

import (
	"fmt"

	"cocinaclinica/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique indexes on the tree tables).
//
// TranslateError is mandatory: the service layer distinguishes code conflicts
// by matching gorm.ErrDuplicatedKey.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates / updates the schema. The three tree tables share the
// Nodo struct, so each one is migrated under its own table name.
func RunMigrations(db *gorm.DB) error {
	for _, tabla := range []string{model.TablaMateriaPrima, model.TablaPlatos, model.TablaRecetas} {
		if err := db.Table(tabla).AutoMigrate(&model.Nodo{}); err != nil {
			return fmt.Errorf("AutoMigrate %s: %w", tabla, err)
		}
	}
	if err := db.AutoMigrate(
		&model.RecetaIngrediente{},
		&model.MovimientoInventario{},
		&model.Usuario{},
		&model.Proveedor{},
		&model.ContactoProveedor{},
		&model.ProveedorPresentacion{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// The codigo uniqueness is PARTIAL on purpose: only active nodes compete for a
// code, so a soft-deleted node frees its code for reuse.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{}
	for _, tabla := range []string{model.TablaMateriaPrima, model.TablaPlatos, model.TablaRecetas} {
		patches = append(patches,
			fmt.Sprintf(`DO $$ BEGIN
			  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_%[1]s_codigo_activo') THEN
			    CREATE UNIQUE INDEX uni_%[1]s_codigo_activo ON %[1]s (codigo) WHERE activo;
			  END IF;
			END $$`, tabla),
			fmt.Sprintf(`DO $$ BEGIN
			  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_%[1]s_parent') THEN
			    CREATE INDEX idx_%[1]s_parent ON %[1]s (parent_id) WHERE activo;
			  END IF;
			END $$`, tabla),
			fmt.Sprintf(`DO $$ BEGIN
			  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_%[1]s_nivel') THEN
			    CREATE INDEX idx_%[1]s_nivel ON %[1]s (nivel_actual) WHERE activo;
			  END IF;
			END $$`, tabla),
		)
	}
	// receta_ingredientes: one materia prima per recipe, ordered lines
	patches = append(patches, `DO $$ BEGIN
	  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_receta_materia_prima') THEN
	    CREATE UNIQUE INDEX uni_receta_materia_prima ON receta_ingredientes (receta_id, materia_prima_id);
	  END IF;
	END $$`)

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
