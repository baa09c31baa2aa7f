// Importa movimientos de stock desde un CSV (sku,kind,quantity,document,notes) usando el motor de movimientos.
// Cada lote de INVENTORY_BULK_MAX filas se confirma de forma atómica; el primer lote fallido detiene la importación.
//
// Uso: go run ./cmd/import_movements --file movimientos.csv --actor admin [--latin1] [--dry-run]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/Inventario-ledger/internal/application/access"
	"github.com/jhoicas/Inventario-ledger/internal/application/audit"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-ledger/pkg/config"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
	"github.com/spf13/pflag"
)

func main() {
	file := pflag.StringP("file", "f", "", "ruta del CSV de movimientos")
	actorName := pflag.StringP("actor", "a", "", "username del usuario que registra los movimientos")
	latin1 := pflag.Bool("latin1", false, "el CSV viene en ISO-8859-1")
	semicolon := pflag.Bool("semicolon", false, "separador ';' en vez de ','")
	dryRun := pflag.Bool("dry-run", false, "solo valida el archivo y resuelve los SKU")
	pflag.Parse()

	if *file == "" || *actorName == "" {
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "import_movements"})

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("abrir CSV")
	}
	defer f.Close()

	comma := ','
	if *semicolon {
		comma = ';'
	}
	rows, err := readRows(f, *latin1, comma)
	if err != nil {
		log.Fatal().Err(err).Msg("CSV inválido")
	}
	log.Info().Int("rows", len(rows)).Msg("CSV leído")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conectar a postgres")
	}
	defer pool.Close()

	users := postgres.NewUserRepository(pool)
	products := postgres.NewProductRepository(pool)

	actor, err := users.GetByUsername(ctx, *actorName)
	if err != nil {
		log.Fatal().Err(err).Msg("buscar actor")
	}
	if actor == nil || actor.Status != entity.UserStatusActive {
		log.Fatal().Str("actor", *actorName).Msg("actor inexistente o inactivo")
	}

	inputs, err := resolve(ctx, products, rows)
	if err != nil {
		log.Fatal().Err(err).Msg("resolver SKU")
	}
	if *dryRun {
		log.Info().Int("movements", len(inputs)).Msg("dry-run: archivo válido, no se registró nada")
		return
	}

	kinds := make([]entity.EntityKind, 0, len(cfg.Audit.EntityKinds))
	for _, k := range cfg.Audit.EntityKinds {
		kinds = append(kinds, entity.EntityKind(k))
	}
	recorder := audit.NewRecorder(postgres.NewAuditRepository(pool), audit.Config{AuditedKinds: kinds}, log.Component("audit"))
	accessSvc := access.NewService(postgres.NewAccessProfileRepository(pool), users, recorder, log.Component("access"))
	engine := inventory.NewMovementEngine(
		postgres.NewTxRunner(pool),
		products,
		postgres.NewLedgerRepository(pool),
		accessSvc,
		recorder,
		cfg.Inventory.BulkMax,
	)

	req := &entity.RequestContext{UserAgent: "import_movements"}
	committed := 0
	for i, batch := range chunkInputs(inputs, rows, cfg.Inventory.BulkMax) {
		entries, err := engine.CommitBatch(ctx, actor, batch.inputs, req)
		if err != nil {
			log.Fatal().Err(err).
				Int("batch", i+1).
				Int("first_line", batch.firstLine).
				Int("committed", committed).
				Msg("lote rechazado, importación detenida")
		}
		committed += len(entries)
		log.Info().Int("batch", i+1).Int("movements", len(entries)).Msg("lote confirmado")
	}
	log.Info().Int("committed", committed).Msg("importación terminada")
}

// resolve traduce SKU a ID; un SKU desconocido aborta antes de escribir nada.
func resolve(ctx context.Context, products repository.ProductRepository, rows []movementRow) ([]inventory.MovementInput, error) {
	ids := make(map[string]string)
	inputs := make([]inventory.MovementInput, 0, len(rows))
	for _, r := range rows {
		id, ok := ids[r.SKU]
		if !ok {
			p, err := products.GetBySKU(ctx, r.SKU)
			if err != nil {
				return nil, err
			}
			if p == nil {
				return nil, fmt.Errorf("línea %d: SKU %q no existe", r.Line, r.SKU)
			}
			id = p.ID
			ids[r.SKU] = id
		}
		inputs = append(inputs, inventory.MovementInput{
			ProductID: id,
			Kind:      r.Kind,
			Quantity:  r.Quantity,
			Document:  r.Document,
			Notes:     r.Notes,
		})
	}
	return inputs, nil
}

type inputBatch struct {
	firstLine int
	inputs    []inventory.MovementInput
}

func chunkInputs(inputs []inventory.MovementInput, rows []movementRow, max int) []inputBatch {
	var out []inputBatch
	offset := 0
	for _, c := range chunk(rows, max) {
		out = append(out, inputBatch{firstLine: c[0].Line, inputs: inputs[offset : offset+len(c)]})
		offset += len(c)
	}
	return out
}
