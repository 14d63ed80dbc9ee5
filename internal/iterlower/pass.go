package iterlower

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"yieldc/internal/ast"
	"yieldc/internal/diag"
	"yieldc/internal/logging"
	"yieldc/internal/sema"
)

// Result summarises a pass over a unit.
type Result struct {
	// Lowered is in source order.
	Lowered []*Lowered
	// Failed counts iterators left unchanged because of errors.
	Failed int
}

// LowerUnit lowers every iterator of u. Methods are processed concurrently,
// each into its own diagnostic bag; bags are merged and classes installed in
// source order so the output does not depend on scheduling.
func LowerUnit(ctx context.Context, u *ast.Unit, res *sema.Result, opts Options) (*Result, error) {
	iters := res.Iterators()
	out := &Result{}
	if len(iters) == 0 {
		return out, nil
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	log := logging.Logger().Named("iterlower")

	type slot struct {
		lowered *Lowered
		ok      bool
		bag     *diag.Bag
	}
	slots := make([]slot, len(iters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, mi := range iters {
		i, mi := i, mi
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			bag := diag.NewBag(0)
			local := opts
			local.Reporter = diag.BagReporter{Bag: bag}
			l, ok := LowerMethod(mi, local)
			slots[i] = slot{lowered: l, ok: ok, bag: bag}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, s := range slots {
		if opts.Reporter != nil {
			for _, d := range s.bag.Items() {
				opts.Reporter.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
			}
		}
		if !s.ok {
			out.Failed++
			log.Debug("iterator left unchanged",
				zap.String("method", iters[i].Class.Name+"."+iters[i].Method.Name),
				zap.Int("diagnostics", s.bag.Len()))
			continue
		}
		l := s.lowered
		Install(u, l, opts.Registry)
		out.Lowered = append(out.Lowered, l)
		log.Debug("iterator lowered",
			zap.String("method", l.Method.QualifiedName()),
			zap.String("class", l.Class.Name),
			zap.Int("states", len(l.Graph.States)),
			zap.Int("yields", l.Graph.YieldCount()),
			zap.Int("regions", len(l.Graph.Regions)),
			zap.Int("hoisted", len(l.Hoisted)))
	}
	return out, nil
}
