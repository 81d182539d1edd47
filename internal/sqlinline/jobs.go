package sqlinline

// Dispatchable jobs: pending jobs plus orphaned in_progress jobs that still
// carry pending directory rows (their token was reclaimed by the sweep).
// Ordering is strict tier priority, FIFO within a tier.
const QSelectPendingJobs = `--sql 64bb86a9-b05b-47d1-b088-54aee7acbadd
select
    j.id,
    j.customer_id,
    j.package_tier,
    j.priority_score,
    j.status,
    j.directories_requested,
    j.business_profile,
    coalesce(j.error_message, ''),
    j.created_at,
    j.started_at,
    j.completed_at
from submission_jobs j
where (
        j.status = 'pending'
        or (
            j.status = 'in_progress'
            and exists (
                select 1
                from directory_results dr
                where dr.job_id = j.id and dr.status = 'pending'
            )
        )
    )
    and not (j.id = any($1::text[]))
order by j.priority_score asc, j.created_at asc
limit $2;
`

// Claiming is monotonic: a terminal job can never return to in_progress.
// Re-claiming an orphaned in_progress job is a no-op update, which is why
// the predicate admits both states.
const QMarkJobInProgress = `--sql bfb60d14-7cb8-48ff-a11a-998b0278fc74
update submission_jobs
set status = 'in_progress',
    started_at = coalesce(started_at, now())
where id = $1
    and status in ('pending', 'in_progress')
returning id;
`

const QSelectJob = `--sql 9a44c103-55a4-4a51-ad15-94bc8568d099
select
    id,
    customer_id,
    package_tier,
    priority_score,
    status,
    directories_requested,
    business_profile,
    coalesce(error_message, ''),
    created_at,
    started_at,
    completed_at
from submission_jobs
where id = $1;
`

const QFinalizeJob = `--sql fc7818e4-3fe6-4351-9010-c7db830a1e30
update submission_jobs
set status = $2,
    error_message = nullif($3, ''),
    completed_at = now()
where id = $1
    and status in ('pending', 'in_progress')
returning id;
`
