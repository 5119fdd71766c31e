/*
Package tally is a small business dashboard: leads, projects and payments
rendered as three charts that stay in sync with their data, the viewport and
the active theme.

# Concept

A Dashboard owns exactly one chart per slot (status, projects, revenue). It
listens to trigger signals on a bus and refreshes every chart when records
change, when the theme changes, or, debounced, when the viewport is resized.
Rendering is delegated to a ports.Renderer, so the same dashboard can drive a
browser over SSE, a terminal, or an in-memory view in tests.

# Usage

	bus := signals.NewBus(logger)
	store := memory.NewStore(bus)

	dash, err := tally.New(
		tally.WithBus(bus),
		tally.WithStore(store),
		tally.WithLogger(logger),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer dash.Close()

	if err := dash.Initialize(ctx); err != nil {
		log.Print(err)
	}

	// Any writer of records now triggers a refresh.
	_ = store.ReplaceLeads(ctx, leads)

Code that cannot hold a reference to the dashboard can use the package-level
shim after SetDefault:

	tally.SetDefault(dash)
	_ = tally.RefreshAll(ctx)
*/
package tally
