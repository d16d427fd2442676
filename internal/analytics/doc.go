// Package analytics reduces filtered daily records to the dashboard tables.
//
// Every function here is pure: it takes records and returns freshly
// allocated tables. Filter narrows the input to an inclusive date range;
// the aggregators then group by month, season, user type and day type.
// Compute ties them together for one dashboard view.
package analytics
