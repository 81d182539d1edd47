package sqlinline

const QJobProgressSnapshot = `--sql 454eb7a5-689b-4d28-9102-a1e07c2fab1b
select
    j.id,
    j.customer_id,
    j.package_tier,
    j.status,
    coalesce(array_length(j.directories_requested, 1), 0) as requested,
    count(*) filter (where dr.status in ('submitted', 'approved')) as completed,
    count(*) filter (where dr.status = 'failed') as failed,
    count(*) filter (where dr.status = 'skipped') as skipped,
    j.created_at,
    j.completed_at
from submission_jobs j
left join directory_results dr on dr.job_id = j.id
group by j.id
order by j.created_at desc;
`
