package utils

const (
	NODETOL = 1.e-12
	// COEFFTOL is the default relative cutoff for monomial coefficients handed to a solver.
	COEFFTOL = 1.e-10
	// DOMAINTOL is the default slack allowed outside [-1,1] for solver roots.
	DOMAINTOL = 1.e-6
	// EIGTOL is the default eigenvalue threshold separating degenerate points.
	EIGTOL = 1.e-6
)
