package reference

// OtherRegion is returned when no region area matches. The table also carries
// an explicit "Other" entry for generic UK markers.
const OtherRegion = "Other"

var ukRegions = RegionTable{
	{Name: "North West", Areas: []string{
		"North West", "Manchester", "Rochdale", "Blackburn", "Warrington", "Liverpool", "Wigan",
		"Stockport", "Ormskirk", "Salford", "Cheshire", "Merseyside", "Preston",
	}},
	// Newcastle and Lincolnshire sit here in the historical data set.
	{Name: "Yorkshire", Areas: []string{
		"Yorkshire", "Lancashire", "Leeds", "Bradford", "Huddersfield", "Newcastle", "Sheffield",
		"Beverly", "Doncaster", "Hartlepool", "Grimsby", "Ripon", "Lincolnshire",
	}},
	{Name: "South East", Areas: []string{
		"South East", "Oxford", "Oxfordshire", "Aldershot", "Stevenage", "Berkshire", "Hampshire",
		"Bexhill-On-Sea", "Newbury", "Reading", "Sandhurst", "Maidenhead", "Sussex", "Surrey",
		"Dartford", "Slough", "Fareham", "Guildford", "Maidstone", "Aylesbury", "Wallingford",
		"Chesham", "Milton Keynes", "Kent", "Margate",
	}},
	{Name: "South West", Areas: []string{
		"South West", "Gloucester", "Devon", "Bristol", "Dorset", "Cheltenham", "Plymouth",
		"Cornwall", "Dorchester", "Exeter", "Chippenham",
	}},
	{Name: "Midlands", Areas: []string{
		"Midlands", "Leicestershire", "Birmingham", "Worcestershire", "Warwickshire", "Derby",
		"Hinckley", "Shropshire", "Coventry", "Leicester", "Warwick", "Nottingham",
		"Burton-On-Trent", "Solihull", "Markfield", "Hereford",
	}},
	{Name: "East of England", Areas: []string{
		"East of England", "Hertfordshire", "Bedfordshire", "Cambridge", "East Anglia", "Norwich",
		"Bedford", "Suffolk", "Norfolk", "Basildon",
	}},
	{Name: "London", Areas: []string{"London", "Croydon", "Hounslow"}},
	{Name: "Scotland", Areas: []string{"Scotland", "Glasgow", "Edinburgh", "Aberdeen"}},
	{Name: "Ireland", Areas: []string{"Ireland", "Belfast"}},
	{Name: "Wales", Areas: []string{"Wales", "Swansea", "Cardiff", "Bridgend"}},
	{Name: OtherRegion, Areas: []string{"UK", "Unspecified"}},
}

var ukTargetCities = []string{
	"London", "Manchester", "Birmingham", "Bristol", "Leeds",
	"Glasgow", "Edinburgh", "Cambridge", "Oxford", "Cardiff", "Belfast",
}

var techSkills = []string{
	// languages
	"Python", "Java", "C#", "C++", "JavaScript", "TypeScript", "SQL",
	"R", "Scala", "Go", "Ruby", "PHP",
	// data science / ML
	"PyTorch", "TensorFlow", "Scikit-learn", "Keras", "Pandas", "NumPy",
	"Matplotlib", "Seaborn", "SciPy",
	// data engineering
	"Spark", "PySpark", "Hadoop", "Kafka", "Airflow", "Databricks",
	"Informatica", "ETL",
	// databases and warehouses
	"PostgreSQL", "MySQL", "SQL Server", "MongoDB", "Cassandra", "Redis",
	"Snowflake", "Redshift", "BigQuery", "DynamoDB", "Elasticsearch",
	// cloud
	"AWS", "Azure", "GCP", "S3", "EC2", "Lambda", "Glue", "EMR",
	"Azure Functions", "Synapse Analytics",
	// devops
	"Docker", "Kubernetes", "Terraform", "Jenkins", "Git", "CI/CD",
	"Ansible", "GitLab", "GitHub Actions",
	// BI
	"Tableau", "Power BI", "Qlik", "Looker", "SSIS",
	// frontend
	"React", "Vue", "Angular",
}
