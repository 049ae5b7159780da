package domain

// KeyPrefix namespaces every key this service writes to a shared keyspace.
// Overridden once at startup from storage.key_prefix.
var KeyPrefix = "investmatch:"

// InvestorCollection is the logical name of the investor collection.
const InvestorCollection = "investors"
