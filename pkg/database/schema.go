package database

import (
	"math"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// longText makes ent pick text over varchar on postgres
const longText = math.MaxInt32

var (
	// LeadsColumns holds the columns for the "leads" table.
	LeadsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString},
		{Name: "email", Type: field.TypeString, Default: ""},
		{Name: "phone", Type: field.TypeString, Default: ""},
		{Name: "source", Type: field.TypeString, Default: ""},
		{Name: "status", Type: field.TypeString, Size: 32, Default: "new"},
		{Name: "estimated_value", Type: field.TypeFloat64, Default: 0},
		{Name: "notes", Type: field.TypeString, Size: longText, Default: ""},
		{Name: "assigned_to", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// LeadsTable holds the schema information for the "leads" table.
	LeadsTable = &schema.Table{
		Name:       "leads",
		Columns:    LeadsColumns,
		PrimaryKey: []*schema.Column{LeadsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "lead_status", Columns: []*schema.Column{LeadsColumns[5]}},
		},
	}

	// ClientsColumns holds the columns for the "clients" table.
	ClientsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString},
		{Name: "email", Type: field.TypeString, Default: ""},
		{Name: "phone", Type: field.TypeString, Default: ""},
		{Name: "address", Type: field.TypeString, Default: ""},
		{Name: "status", Type: field.TypeString, Size: 32, Default: "active"},
		{Name: "estimated_value", Type: field.TypeFloat64, Default: 0},
		{Name: "source", Type: field.TypeString, Default: ""},
		{Name: "assigned_to", Type: field.TypeString, Default: ""},
		{Name: "notes", Type: field.TypeString, Size: longText, Default: ""},
		{Name: "lead_id", Type: field.TypeInt, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ClientsTable holds the schema information for the "clients" table.
	ClientsTable = &schema.Table{
		Name:       "clients",
		Columns:    ClientsColumns,
		PrimaryKey: []*schema.Column{ClientsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "clients_leads_lead",
				Columns:    []*schema.Column{ClientsColumns[10]},
				RefColumns: []*schema.Column{LeadsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{Name: "client_lead_id", Columns: []*schema.Column{ClientsColumns[10]}},
		},
	}

	// TechniciansColumns holds the columns for the "technicians" table.
	TechniciansColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString},
		{Name: "email", Type: field.TypeString, Default: ""},
		{Name: "phone", Type: field.TypeString, Default: ""},
		{Name: "status", Type: field.TypeString, Size: 32, Default: "active"},
		{Name: "notes", Type: field.TypeString, Size: longText, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	// TechniciansTable holds the schema information for the "technicians" table.
	TechniciansTable = &schema.Table{
		Name:       "technicians",
		Columns:    TechniciansColumns,
		PrimaryKey: []*schema.Column{TechniciansColumns[0]},
	}

	// JobsColumns holds the columns for the "jobs" table.
	JobsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "client_id", Type: field.TypeInt},
		{Name: "title", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Size: longText, Default: ""},
		{Name: "status", Type: field.TypeString, Size: 32, Default: "pending"},
		{Name: "priority", Type: field.TypeString, Size: 16, Default: "medium"},
		{Name: "assigned_technicians", Type: field.TypeJSON, Nullable: true},
		{Name: "budget", Type: field.TypeFloat64, Default: 0},
		{Name: "start_date", Type: field.TypeTime, Nullable: true},
		{Name: "end_date", Type: field.TypeTime, Nullable: true},
		{Name: "service_address", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// JobsTable holds the schema information for the "jobs" table.
	JobsTable = &schema.Table{
		Name:       "jobs",
		Columns:    JobsColumns,
		PrimaryKey: []*schema.Column{JobsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "jobs_clients_client",
				Columns:    []*schema.Column{JobsColumns[1]},
				RefColumns: []*schema.Column{ClientsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "job_client_id", Columns: []*schema.Column{JobsColumns[1]}},
			{Name: "job_status", Columns: []*schema.Column{JobsColumns[4]}},
		},
	}

	// QuotesColumns holds the columns for the "quotes" table.
	QuotesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "client_id", Type: field.TypeInt},
		{Name: "job_id", Type: field.TypeInt, Nullable: true},
		{Name: "amount", Type: field.TypeFloat64, Default: 0},
		{Name: "status", Type: field.TypeString, Size: 32, Default: "draft"},
		{Name: "valid_until", Type: field.TypeTime, Nullable: true},
		{Name: "terms", Type: field.TypeString, Size: longText, Default: ""},
		{Name: "notes", Type: field.TypeString, Size: longText, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// QuotesTable holds the schema information for the "quotes" table.
	QuotesTable = &schema.Table{
		Name:       "quotes",
		Columns:    QuotesColumns,
		PrimaryKey: []*schema.Column{QuotesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quotes_clients_client",
				Columns:    []*schema.Column{QuotesColumns[1]},
				RefColumns: []*schema.Column{ClientsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "quotes_jobs_job",
				Columns:    []*schema.Column{QuotesColumns[2]},
				RefColumns: []*schema.Column{JobsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{Name: "quote_client_id", Columns: []*schema.Column{QuotesColumns[1]}},
		},
	}

	// InvoicesColumns holds the columns for the "invoices" table.
	InvoicesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "client_id", Type: field.TypeInt},
		{Name: "job_id", Type: field.TypeInt, Nullable: true},
		{Name: "quote_id", Type: field.TypeInt, Nullable: true},
		{Name: "amount", Type: field.TypeFloat64, Default: 0},
		{Name: "status", Type: field.TypeString, Size: 32, Default: "draft"},
		{Name: "invoice_date", Type: field.TypeTime},
		{Name: "due_date", Type: field.TypeTime, Nullable: true},
		{Name: "payment_terms", Type: field.TypeString, Size: longText, Default: ""},
		{Name: "notes", Type: field.TypeString, Size: longText, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// InvoicesTable holds the schema information for the "invoices" table.
	InvoicesTable = &schema.Table{
		Name:       "invoices",
		Columns:    InvoicesColumns,
		PrimaryKey: []*schema.Column{InvoicesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "invoices_clients_client",
				Columns:    []*schema.Column{InvoicesColumns[1]},
				RefColumns: []*schema.Column{ClientsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "invoices_jobs_job",
				Columns:    []*schema.Column{InvoicesColumns[2]},
				RefColumns: []*schema.Column{JobsColumns[0]},
				OnDelete:   schema.SetNull,
			},
			{
				Symbol:     "invoices_quotes_quote",
				Columns:    []*schema.Column{InvoicesColumns[3]},
				RefColumns: []*schema.Column{QuotesColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{Name: "invoice_client_id", Columns: []*schema.Column{InvoicesColumns[1]}},
			{Name: "invoice_quote_id", Columns: []*schema.Column{InvoicesColumns[3]}},
			{Name: "invoice_status_due_date", Columns: []*schema.Column{InvoicesColumns[5], InvoicesColumns[7]}},
		},
	}

	// ChannelsReportColumns holds the columns for the "channels_report" table.
	ChannelsReportColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "month", Type: field.TypeString, Size: 7},
		{Name: "channel", Type: field.TypeString},
		{Name: "cost", Type: field.TypeFloat64, Default: 0},
		{Name: "leads", Type: field.TypeInt, Default: 0},
		{Name: "jobs", Type: field.TypeInt, Default: 0},
		{Name: "revenue", Type: field.TypeFloat64, Default: 0},
		{Name: "close_rate", Type: field.TypeFloat64, Default: 0},
		{Name: "cost_per_lead", Type: field.TypeFloat64, Default: 0},
		{Name: "roi", Type: field.TypeFloat64, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ChannelsReportTable holds the schema information for the "channels_report" table.
	ChannelsReportTable = &schema.Table{
		Name:       "channels_report",
		Columns:    ChannelsReportColumns,
		PrimaryKey: []*schema.Column{ChannelsReportColumns[0]},
		Indexes: []*schema.Index{
			{Name: "channelreport_month_channel", Unique: true, Columns: []*schema.Column{ChannelsReportColumns[1], ChannelsReportColumns[2]}},
		},
	}

	// UserProfilesColumns holds the columns for the "user_profiles" table.
	UserProfilesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "full_name", Type: field.TypeString, Default: ""},
		{Name: "password_hash", Type: field.TypeString},
		{Name: "role", Type: field.TypeString, Size: 32, Default: "user"},
		{Name: "created_at", Type: field.TypeTime},
	}
	// UserProfilesTable holds the schema information for the "user_profiles" table.
	UserProfilesTable = &schema.Table{
		Name:       "user_profiles",
		Columns:    UserProfilesColumns,
		PrimaryKey: []*schema.Column{UserProfilesColumns[0]},
	}

	// Tables holds all the tables in the schema, in dependency order.
	Tables = []*schema.Table{
		LeadsTable,
		ClientsTable,
		TechniciansTable,
		JobsTable,
		QuotesTable,
		InvoicesTable,
		ChannelsReportTable,
		UserProfilesTable,
	}
)

func init() {
	ClientsTable.ForeignKeys[0].RefTable = LeadsTable
	JobsTable.ForeignKeys[0].RefTable = ClientsTable
	QuotesTable.ForeignKeys[0].RefTable = ClientsTable
	QuotesTable.ForeignKeys[1].RefTable = JobsTable
	InvoicesTable.ForeignKeys[0].RefTable = ClientsTable
	InvoicesTable.ForeignKeys[1].RefTable = JobsTable
	InvoicesTable.ForeignKeys[2].RefTable = QuotesTable
}
