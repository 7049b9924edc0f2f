package handler

// MetricPath exposes metricPath to the external test package.
var MetricPath = metricPath
