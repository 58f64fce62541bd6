// Package glide is a client for the ServiceNow Table API. It exposes a typed,
// paginated record cursor together with single-record get, insert, update and
// delete operations.
//
// # Overview
//
// A Cursor[T] is bound to one table and decodes records into T, usually a
// struct embedding Base for its sys_id. Filters are appended as encoded query
// clauses; Query activates the cursor and fetches the first batch, and Next
// drains it, fetching further batches as needed until the limit or the
// server-reported total (X-Total-Count) is reached.
//
//	type Incident struct {
//	  glide.Base
//	  Number           string `json:"number"`
//	  ShortDescription string `json:"short_description"`
//	}
//
//	func example(ctx context.Context) error {
//	  // Reads SNOW_API_TOKEN or SNOW_API_USER/SNOW_API_PASSWD, and SNOW_API_INSTANCE.
//	  incidents, err := glide.New[Incident]("incident")
//	  if err != nil { return err }
//
//	  incidents.AddEncodedQuery(glide.Equals("active", "true"))
//	  incidents.AddEncodedQuery(glide.OrderByDesc("sys_created_on"))
//	  incidents.SetBatchSize(100)
//
//	  if err := incidents.Query(ctx); err != nil { return err }
//	  for incident := range incidents.Records(ctx) {
//	    fmt.Println(incident.Number)
//	  }
//
//	  return incidents.Err()
//	}
//
// # Configuration
//
// Credentials and the instance host come from a ConfigProvider. NewEnvProvider
// (the default) reads the SNOW_API_* environment variables, NewViperProvider
// reads any viper instance, and a *Config built with NewConfig can be passed
// directly with WithConfig.
//
// # Errors
//
// Constructors and Query return errors. Next, Get, Insert, Update and Delete
// return a boolean instead; the cause of the most recent failure is available
// from Cursor.Err and can be inspected with errors.Is against ErrFetchFailed,
// ErrDeserializeFailed and friends, or with IsNotFound and IsUnauthorized.
//
// # References
//
// Reference fields decode into Reference, which can be turned into a cursor
// with ResolveCursor or fetched with ResolveItem.
package glide
