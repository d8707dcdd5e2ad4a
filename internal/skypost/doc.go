// Package skypost defines the sky posterior capability the driver consumes
// and ships the default clustered kernel density implementation.
//
// The driver only sees Posterior and Engine. ClusteredKDE partitions the
// posterior samples in (ra, sin dec) with k-means, fits a Gaussian KDE per
// cluster, and picks the number of clusters by BIC. Working in sin dec makes
// the density per unit coordinate area a density per steradian.
//
// Snapshots hold only the clustering input and labels; kernels are refit on
// load, which keeps re-saved snapshots byte-identical to their source.
package skypost
