package warehouse

// schemaSQL holds the daily fact tables. Days are stored as YYYY-MM-DD text
// in the store's local calendar.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS sales_daily (
	company TEXT NOT NULL,
	day TEXT NOT NULL,
	net_sales REAL NOT NULL DEFAULT 0,
	gross_sales REAL NOT NULL DEFAULT 0,
	orders INTEGER NOT NULL DEFAULT 0,
	units INTEGER NOT NULL DEFAULT 0,
	refund_amount REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (company, day)
);

CREATE TABLE IF NOT EXISTS ads_daily (
	company TEXT NOT NULL,
	day TEXT NOT NULL,
	spend REAL NOT NULL DEFAULT 0,
	impressions INTEGER NOT NULL DEFAULT 0,
	clicks INTEGER NOT NULL DEFAULT 0,
	purchases INTEGER NOT NULL DEFAULT 0,
	purchase_value REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (company, day)
);

CREATE TABLE IF NOT EXISTS ads_by_ad (
	company TEXT NOT NULL,
	day TEXT NOT NULL,
	campaign_name TEXT NOT NULL DEFAULT '',
	ad_id TEXT NOT NULL DEFAULT '',
	ad_name TEXT NOT NULL DEFAULT '',
	spend REAL NOT NULL DEFAULT 0,
	impressions INTEGER NOT NULL DEFAULT 0,
	clicks INTEGER NOT NULL DEFAULT 0,
	purchases INTEGER NOT NULL DEFAULT 0,
	purchase_value REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_ads_by_ad_company_day ON ads_by_ad(company, day);

CREATE TABLE IF NOT EXISTS traffic_daily (
	company TEXT NOT NULL,
	day TEXT NOT NULL,
	users INTEGER NOT NULL DEFAULT 0,
	new_users INTEGER NOT NULL DEFAULT 0,
	sessions INTEGER NOT NULL DEFAULT 0,
	pageviews INTEGER NOT NULL DEFAULT 0,
	purchases INTEGER NOT NULL DEFAULT 0,
	revenue REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (company, day)
);

CREATE TABLE IF NOT EXISTS product_sales_daily (
	company TEXT NOT NULL,
	day TEXT NOT NULL,
	product_id TEXT NOT NULL,
	product_name TEXT NOT NULL DEFAULT '',
	quantity INTEGER NOT NULL DEFAULT 0,
	sales REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_product_sales_company_day ON product_sales_daily(company, day);

CREATE TABLE IF NOT EXISTS viewitem_daily (
	company TEXT NOT NULL,
	day TEXT NOT NULL,
	item_name TEXT NOT NULL,
	view_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_viewitem_company_day ON viewitem_daily(company, day);
`
